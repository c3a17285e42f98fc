// Package callable resolves configuration-driven callback specs into
// invocable values.
//
// # Specs
//
//	"App\Http\UserController::make"   static method, or instance method if not declared static
//	"App\Http\UserController->index"   instance method
//	"App\Http\UserController@index"    instance method
//	"App\Http\HomeController"          instance method Invoke (the __invoke convention)
//
// Anything that is not a string (a Callable, a Go func, or a
// []any{target, "method"} pair) is checked for callability and returned.
//
// # Classes
//
// Go cannot look types up by name, so every resolvable class is declared
// in a registry, usually the application container:
//
//	c.Register(callable.NewClass(`App\Http\UserController`,
//	    func(b callable.Binding) (*UserController, error) {
//	        return &UserController{}, nil
//	    }))
//
// Instance methods are the Go methods of the registered type, matched
// case-insensitively. Static methods are declared with Class.Static.
//
// # Binding
//
// The Resolver's Binding is passed to every constructor and, when it is
// null or holds an object, becomes the context ("this") of resolved
// Closures:
//
//	r := callable.NewResolver(c, callable.Bind(app), true)
//	fn, err := r.Resolve(`App\Http\UserController@index`)
//	out, err := fn.Call(w, req)
package callable
