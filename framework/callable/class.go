package callable

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Class is a registry entry describing a resolvable target type: how to
// construct it, which instance methods it has (the method set of its Go
// type) and which static methods it declares.
//
// Go has no static methods or runtime class lookup, so both are declared
// up front:
//
//	users := callable.NewClass(`App\Http\UserController`,
//	    func(b callable.Binding) (*UserController, error) {
//	        return &UserController{app: b.Value()}, nil
//	    }).
//	    Static("make", MakeUser)
type Class struct {
	name       string
	typ        reflect.Type
	construct  func(Binding) (any, error)
	statics    map[string]reflect.Value
	decorators []func(any) any
}

// NewClass registers T under name. A nil ctor makes the class
// non-instantiable; see AbstractClass.
func NewClass[T any](name string, ctor func(Binding) (T, error)) *Class {
	c := &Class{
		name:    strings.TrimPrefix(name, `\`),
		typ:     reflect.TypeOf((*T)(nil)).Elem(),
		statics: make(map[string]reflect.Value),
	}
	if ctor != nil {
		c.construct = func(b Binding) (any, error) { return ctor(b) }
	}
	return c
}

// AbstractClass declares a class that only offers static methods.
func AbstractClass[T any](name string) *Class {
	return NewClass[T](name, nil)
}

// Static declares fn as the static method name. It panics when fn is not a
// func.
func (c *Class) Static(name string, fn any) *Class {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("callable: static %s::%s must be a func, got %T", c.name, name, fn))
	}
	c.statics[strings.ToLower(name)] = v
	return c
}

// Name returns the class name without a leading namespace separator.
func (c *Class) Name() string { return c.name }

// Type returns the Go type whose method set backs instance methods.
func (c *Class) Type() reflect.Type { return c.typ }

func (c *Class) Instantiable() bool { return c.construct != nil }

// IsStatic reports whether method is declared static.
func (c *Class) IsStatic(method string) bool {
	_, ok := c.static(method)
	return ok
}

// HasMethod reports whether method exists, static or not.
func (c *Class) HasMethod(method string) bool {
	if c.IsStatic(method) {
		return true
	}
	_, ok := findMethod(c.typ, method)
	return ok
}

// New constructs an instance, handing b to the constructor.
func (c *Class) New(b Binding) (any, error) {
	if c.construct == nil {
		return nil, notInstantiable(c.name, "")
	}
	instance, err := c.construct(b)
	if err != nil {
		return nil, fmt.Errorf("callable: construct %s: %w", c.name, err)
	}
	for _, fn := range c.decorators {
		instance = fn(instance)
	}
	return instance, nil
}

// Decorate returns a copy of c whose new instances pass through fn.
func (c *Class) Decorate(fn func(instance any) any) *Class {
	cp := *c
	cp.decorators = append(slices.Clip(c.decorators), fn)
	return &cp
}

func (c *Class) static(method string) (reflect.Value, bool) {
	fn, ok := c.statics[strings.ToLower(method)]
	return fn, ok
}
