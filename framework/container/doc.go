// Package container provides the application service container and the
// class registry callback specs are resolved against.
//
// # Services
//
//	c := container.New()
//
//	// new value on every Make
//	c.Bind("clock", func(c *container.Container) (any, error) { return time.Now, nil })
//
//	// built once, reused
//	c.Singleton("config", func(c *container.Container) (any, error) { return config.Load(), nil })
//
//	// pre-built value
//	c.Instance("app", application)
//
//	cfg, err := container.Resolve[*config.Config](c, "config")
//
// # Classes
//
// Classes are what callback specs such as `App\Http\UserController@index`
// name. The container implements callable.ClassRegistry:
//
//	c.Register(callable.NewClass(`App\Http\UserController`, NewUserController))
//	c.ClassAlias(`App\Http\UserController`, `Users`)
//
//	r := callable.NewResolver(c, callable.Bind(application), true)
//	fn, err := r.Resolve(`Users@index`)
//
// Extend decorates constructed instances and AfterConstructing observes
// them; neither caches anything, every resolution builds a new instance.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Register(callable.NewClass(`App\Http\HomeController`, NewHomeController))
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
// A deferred provider registers nothing until one of its Provides() names
// is first made as a service or looked up as a class:
//
//	type ReportsProvider struct{ container.BaseProvider }
//
//	func (p *ReportsProvider) IsDeferred() bool   { return true }
//	func (p *ReportsProvider) Provides() []string { return []string{`App\Reports\Daily`} }
package container
