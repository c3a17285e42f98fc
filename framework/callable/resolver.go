package callable

import (
	"reflect"
	"time"

	"github.com/go-logr/logr"
)

// ClassRegistry is the live type registry a Resolver looks class names up
// in. *container.Container implements it.
type ClassRegistry interface {
	LookupClass(name string) (*Class, bool)
}

// InstanceRegistry is implemented by registries that can map an instance
// back to its class. A Resolver over one dispatches static methods named
// through []any{instance, "method"} pairs.
type InstanceRegistry interface {
	ClassOf(instance any) (*Class, bool)
}

// Kind labels what a spec resolved to.
type Kind string

const (
	KindUnresolved Kind = "unresolved"
	KindStatic     Kind = "static"
	KindInstance   Kind = "instance"
	KindClosure    Kind = "closure"
	KindNative     Kind = "native"
	KindReference  Kind = "reference"
)

// Observer receives a notification for every Resolve call and every
// instance the Resolver constructs.
type Observer interface {
	ObserveResolve(kind Kind, err error, elapsed time.Duration)
	ObserveInstance(class string)
}

// Resolver turns callback specs into Callables.
//
// A Resolver is not safe for concurrent mutation: SetBinding racing an
// in-flight Resolve is a data race. Give each call chain its own copy
// (Clone, WithBinding) when the binding changes per chain.
type Resolver struct {
	classes             ClassRegistry
	binding             Binding
	resolveStaticMethod bool
	logger              logr.Logger
	observer            Observer
}

// NewResolver returns a Resolver over classes.
//
//	r := callable.NewResolver(c, callable.Bind(app), true)
func NewResolver(classes ClassRegistry, binding Binding, resolveStaticMethod bool) *Resolver {
	return &Resolver{
		classes:             classes,
		binding:             binding,
		resolveStaticMethod: resolveStaticMethod,
		logger:              logr.Discard(),
	}
}

// Default returns a Resolver with a disabled binding that resolves static
// methods.
func Default(classes ClassRegistry) *Resolver {
	return NewResolver(classes, Disabled(), true)
}

func (r *Resolver) Binding() Binding     { return r.binding }
func (r *Resolver) SetBinding(b Binding) { r.binding = b }

func (r *Resolver) ResolveStaticMethod() bool     { return r.resolveStaticMethod }
func (r *Resolver) SetResolveStaticMethod(v bool) { r.resolveStaticMethod = v }

func (r *Resolver) SetLogger(l logr.Logger) { r.logger = l.WithName("callable") }
func (r *Resolver) SetObserver(o Observer)  { r.observer = o }

// Clone returns an independent copy sharing the same registry.
func (r *Resolver) Clone() *Resolver {
	cp := *r
	return &cp
}

// WithBinding returns a copy of r bound to b.
func (r *Resolver) WithBinding(b Binding) *Resolver {
	cp := r.Clone()
	cp.binding = b
	return cp
}

// Resolve turns spec into a Callable. spec may be a class/method string
// ("Class::method", "Class->method", "Class@method" or a bare class name),
// a Callable, a Go func, or a two-element []any{target, "method"} or
// []string{"Class", "method"} pair. Named string types count as strings.
//
// Nothing is cached: every call looks the class up again and constructs a
// fresh instance for instance methods.
func (r *Resolver) Resolve(spec any) (Callable, error) {
	start := time.Now()
	resolved, kind, err := r.resolve(spec)
	if r.observer != nil {
		r.observer.ObserveResolve(kind, err, time.Since(start))
	}
	if err != nil {
		r.logger.V(1).Info("resolve failed", "spec", Render(spec), "error", err.Error())
		return nil, err
	}
	r.logger.V(1).Info("resolved", "spec", Render(spec), "kind", kind)
	return resolved, nil
}

// Call resolves spec and invokes it with args.
func (r *Resolver) Call(spec any, args ...any) ([]any, error) {
	c, err := r.Resolve(spec)
	if err != nil {
		return nil, err
	}
	return c.Call(args...)
}

func (r *Resolver) resolve(spec any) (Callable, Kind, error) {
	resolved, kind := spec, KindNative

	if s, ok := asString(spec); ok {
		p, matched := Parse(s)
		class, ok := lookupClass(r.classes, p.Class)
		if !ok {
			return nil, KindUnresolved, classNotFound(p.Class)
		}

		if matched && p.Operator == OpStatic {
			if !r.resolveStaticMethod {
				return Reference{spec: s, classes: r.classes}, KindReference, nil
			}
			if !class.HasMethod(p.Method) {
				return nil, KindUnresolved, methodNotFound(p.Class, p.Method)
			}
			if fn, ok := class.static(p.Method); ok {
				return StaticMethod{Class: p.Class, Method: p.Method, fn: fn}, KindStatic, nil
			}
			// declared as an instance method: call it on a fresh instance
		}

		if !class.Instantiable() {
			return nil, KindInstance, notInstantiable(p.Class, p.Method)
		}
		instance, err := class.New(r.binding)
		if err != nil {
			return nil, KindInstance, err
		}
		if r.observer != nil {
			r.observer.ObserveInstance(class.Name())
		}
		resolved, kind = MethodPair{Instance: instance, Method: p.Method, class: class}, KindInstance
	}

	c, ok := r.callable(resolved)
	if !ok {
		return nil, kind, notResolvable(spec)
	}
	if closure, ok := c.(Closure); ok {
		kind = KindClosure
		if r.binding.rebinds() {
			c = closure.BindTo(r.binding.Value())
		}
	}
	return c, kind, nil
}

// callable reports whether v can be invoked, converting it to a Callable.
func (r *Resolver) callable(v any) (Callable, bool) {
	switch c := v.(type) {
	case nil:
		return nil, false
	case MethodPair:
		c = r.withClass(c)
		return c, c.valid()
	case StaticMethod:
		return c, c.fn.IsValid()
	case Closure:
		return c, c.body != nil
	case Func:
		return c, c.valid()
	case Callable:
		return c, true
	case []any:
		return r.pair(c)
	case []string:
		spec := make([]any, len(c))
		for i, s := range c {
			spec[i] = s
		}
		return r.pair(spec)
	}
	if fn := reflect.ValueOf(v); fn.Kind() == reflect.Func && !fn.IsNil() {
		return Func{fn: fn}, true
	}
	return nil, false
}

// pair handles []any{instance, "method"} and []any{"Class", "staticMethod"}.
func (r *Resolver) pair(spec []any) (Callable, bool) {
	if len(spec) != 2 {
		return nil, false
	}
	method, ok := asString(spec[1])
	if !ok {
		return nil, false
	}
	name, ok := asString(spec[0])
	if !ok {
		p := r.withClass(MethodPair{Instance: spec[0], Method: method})
		return p, p.valid()
	}
	class, ok := lookupClass(r.classes, name)
	if !ok {
		return nil, false
	}
	fn, ok := class.static(method)
	if !ok {
		return nil, false
	}
	return StaticMethod{Class: name, Method: method, fn: fn}, true
}

// withClass attaches the instance's class when the registry can find it.
func (r *Resolver) withClass(p MethodPair) MethodPair {
	if p.class != nil || p.Instance == nil {
		return p
	}
	if classes, ok := r.classes.(InstanceRegistry); ok {
		p.class, _ = classes.ClassOf(p.Instance)
	}
	return p
}

// asString unwraps string kinds, named ones included. A named string type
// that is itself a Callable is left alone.
func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if _, ok := v.(Callable); ok || v == nil {
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func lookupClass(classes ClassRegistry, name string) (*Class, bool) {
	if classes == nil {
		return nil, false
	}
	return classes.LookupClass(name)
}
