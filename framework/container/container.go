package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/km-arc/go-callable/framework/callable"
)

// ErrNotBound is returned by Make when nothing is registered under an abstract.
var ErrNotBound = errors.New("container: no binding registered")

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a service value from the container.
type Factory func(c *Container) (any, error)

// service holds a registered factory and whether it is a singleton.
type service struct {
	factory   Factory
	singleton bool
}

// Extender decorates a freshly constructed class instance.
type Extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the application's service container and its class registry.
//
// Services are keyed by abstract name and built by factories (Bind,
// Singleton, Instance, Make). Classes are the targets callback specs name;
// the container implements callable.ClassRegistry so a Resolver can look
// them up by name.
type Container struct {
	mu sync.RWMutex

	// abstract → service
	services map[string]*service

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → abstract
	aliases map[string]string

	// class key → class
	classes map[string]*callable.Class

	// class alias key → class key
	classAliases map[string]string

	// class key → extenders
	extenders map[string][]Extender

	// abstract or class key → lazy loader
	deferred map[string]func(*Container)

	afterConstructing []func(class string, instance any)
}

// New creates an empty container bound to itself as "container".
func New() *Container {
	c := &Container{}
	c.reset()
	c.Instance("container", c)
	return c
}

func (c *Container) reset() {
	c.services = make(map[string]*service)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.classes = make(map[string]*callable.Class)
	c.classAliases = make(map[string]string)
	c.extenders = make(map[string][]Extender)
	c.deferred = make(map[string]func(*Container))
	c.afterConstructing = nil
}

// ── Services ──────────────────────────────────────────────────────────────────

// Bind registers a factory run on every Make.
//
//	c.Bind("clock", func(c *container.Container) (any, error) { return time.Now, nil })
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is kept after the first Make.
//
//	c.Singleton("config", func(c *container.Container) (any, error) {
//	    return config.Load(), nil
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true)
}

func (c *Container) bind(abstract string, factory Factory, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.instances, key)
	delete(c.deferred, key)
	c.services[key] = &service{factory: factory, singleton: singleton}
}

// Instance registers a pre-built value.
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.services, key)
	delete(c.deferred, key)
	c.instances[key] = instance
}

// Alias registers an alternative name for an abstract.
func (c *Container) Alias(abstract, alias string) {
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonical(abstract)
}

// Make returns the service registered under abstract.
func (c *Container) Make(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	svc, ok := c.services[key]
	load := c.deferred[key]
	c.mu.RUnlock()

	if !ok {
		if load == nil {
			return nil, fmt.Errorf("%w for [%s]", ErrNotBound, abstract)
		}
		c.runDeferred(key, load)
		return c.Make(abstract)
	}

	instance, err := svc.factory(c)
	if err != nil {
		return nil, fmt.Errorf("container: make [%s]: %w", abstract, err)
	}
	if svc.singleton {
		c.mu.Lock()
		if existing, ok := c.instances[key]; ok {
			instance = existing
		} else {
			c.instances[key] = instance
		}
		c.mu.Unlock()
	}
	return instance, nil
}

// Bound reports whether abstract has a service, an instance or a deferred loader.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasService := c.services[key]
	_, hasInstance := c.instances[key]
	_, hasDeferred := c.deferred[key]
	return hasService || hasInstance || hasDeferred
}

// Resolved reports whether a singleton or instance exists for abstract.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes the service and instance registered under abstract.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.services, key)
	delete(c.instances, key)
}

// Flush resets the container, classes included.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Bindings returns every registered service abstract, sorted.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.services)+len(c.instances))
	for k := range c.services {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.services[k]; !already {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// canonical resolves a service alias (must hold mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Classes ───────────────────────────────────────────────────────────────────

// Register adds class to the registry, replacing any class of the same
// name. Class names are case-insensitive and a leading `\` is ignored.
//
//	c.Register(callable.NewClass(`App\Http\UserController`, NewUserController))
func (c *Container) Register(class *callable.Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := classKey(class.Name())
	delete(c.deferred, key)
	c.classes[key] = class
}

// ClassAlias makes alias resolve to the class registered as class.
func (c *Container) ClassAlias(class, alias string) {
	if classKey(class) == classKey(alias) {
		panic(fmt.Sprintf("container: class [%s] is aliased to itself", class))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classAliases[classKey(alias)] = classKey(class)
}

// LookupClass implements callable.ClassRegistry. The returned class applies
// this container's extenders and fires AfterConstructing callbacks for
// every instance it builds.
func (c *Container) LookupClass(name string) (*callable.Class, bool) {
	c.mu.RLock()
	key := c.classCanonical(classKey(name))
	class, ok := c.classes[key]
	load := c.deferred[key]
	exts := c.extenders[key]
	hooks := len(c.afterConstructing) > 0
	c.mu.RUnlock()

	if !ok {
		if load == nil {
			return nil, false
		}
		c.runDeferred(key, load)
		return c.LookupClass(name)
	}
	if len(exts) == 0 && !hooks {
		return class, true
	}
	return class.Decorate(func(instance any) any {
		for _, ext := range exts {
			instance = ext(instance, c)
		}
		c.fireAfterConstructing(class.Name(), instance)
		return instance
	}), true
}

// ClassOf implements callable.InstanceRegistry: it returns the registered
// class whose Go type is instance's dynamic type.
func (c *Container) ClassOf(instance any) (*callable.Class, bool) {
	t := reflect.TypeOf(instance)
	if t == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, class := range c.classes {
		if class.Type() == t {
			return class, true
		}
	}
	return nil, false
}

// HasClass reports whether name is registered or deferred.
func (c *Container) HasClass(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.classCanonical(classKey(name))
	_, ok := c.classes[key]
	_, deferred := c.deferred[key]
	return ok || deferred
}

// Classes returns the names of all registered classes, sorted.
func (c *Container) Classes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.classes))
	for _, class := range c.classes {
		out = append(out, class.Name())
	}
	slices.Sort(out)
	return out
}

// Extend decorates every instance constructed for class.
//
//	c.Extend(`App\Http\UserController`, func(instance any, c *container.Container) any {
//	    return &AuditedController{Inner: instance}
//	})
func (c *Container) Extend(class string, fn Extender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.classCanonical(classKey(class))
	c.extenders[key] = append(c.extenders[key], fn)
}

// AfterConstructing registers a callback fired after any class instance is built.
func (c *Container) AfterConstructing(cb func(class string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterConstructing = append(c.afterConstructing, cb)
}

func (c *Container) fireAfterConstructing(class string, instance any) {
	c.mu.RLock()
	cbs := c.afterConstructing
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(class, instance)
	}
}

func (c *Container) classCanonical(key string) string {
	if target, ok := c.classAliases[key]; ok {
		return target
	}
	return key
}

func classKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, `\`))
}

// ── Deferred loading ──────────────────────────────────────────────────────────

// Defer registers load to run the first time any of names is made or looked
// up as a class. load is expected to register those names.
func (c *Container) Defer(names []string, load func(*Container)) {
	var once sync.Once
	run := func(c *Container) { once.Do(func() { load(c) }) }

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range names {
		c.deferred[name] = run
		c.deferred[classKey(name)] = run
	}
}

func (c *Container) runDeferred(key string, load func(*Container)) {
	load(c)
	c.mu.Lock()
	delete(c.deferred, key)
	c.mu.Unlock()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	cfg, err := container.Resolve[*config.Config](c, "config")
func Resolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, not %T", abstract, instance, zero)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, abstract string) T {
	typed, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}
