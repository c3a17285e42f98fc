package callable

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Callable is anything Resolve can hand back. Call runs the target and
// returns its results, minus a trailing error which becomes err.
type Callable interface {
	Call(args ...any) ([]any, error)
}

// ── MethodPair ────────────────────────────────────────────────────────────────

// MethodPair is an instance paired with one of its method names. Pairs
// built by a Resolver also reach the static methods of the instance's
// class, so ->, @ and []any{instance, "method"} can name either kind.
type MethodPair struct {
	Instance any
	Method   string
	class    *Class
}

func (p MethodPair) Call(args ...any) ([]any, error) {
	fn, ok := p.target()
	if !ok {
		return nil, fmt.Errorf("callable: %T has no method %s", p.Instance, p.Method)
	}
	return call(fn, args)
}

func (p MethodPair) valid() bool {
	_, ok := p.target()
	return ok
}

// target prefers the instance method over a static of the same name.
func (p MethodPair) target() (reflect.Value, bool) {
	if fn, ok := boundMethod(p.Instance, p.Method); ok {
		return fn, true
	}
	if p.class == nil {
		return reflect.Value{}, false
	}
	return p.class.static(p.Method)
}

// MarshalJSON renders the pair as [instance, "method"].
func (p MethodPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Instance, p.Method})
}

// ── StaticMethod ──────────────────────────────────────────────────────────────

// StaticMethod names a static method of a registered class. Only values
// produced by a Resolver carry the dispatch function.
type StaticMethod struct {
	Class  string
	Method string
	fn     reflect.Value
}

func (s StaticMethod) Call(args ...any) ([]any, error) {
	if !s.fn.IsValid() {
		return nil, fmt.Errorf("callable: %s::%s is not bound to a class", s.Class, s.Method)
	}
	return call(s.fn, args)
}

// MarshalJSON renders the method as ["Class", "method"].
func (s StaticMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{s.Class, s.Method})
}

// ── Closure ───────────────────────────────────────────────────────────────────

// ClosureFunc is the body of a Closure. this is the closure's bound context.
type ClosureFunc func(this any, args ...any) (any, error)

// Closure is an anonymous function with an explicit, rebindable context.
//
//	hello := callable.NewClosure(func(this any, args ...any) (any, error) {
//	    return fmt.Sprintf("hello from %T", this), nil
//	})
type Closure struct {
	body ClosureFunc
	this any
}

// NewClosure returns an unbound closure.
func NewClosure(body ClosureFunc) Closure {
	return Closure{body: body}
}

// BindTo returns a closure with the same body and this as its context.
func (c Closure) BindTo(this any) Closure {
	return Closure{body: c.body, this: this}
}

// This returns the bound context.
func (c Closure) This() any { return c.this }

func (c Closure) Call(args ...any) ([]any, error) {
	if c.body == nil {
		return nil, errors.New("callable: closure has no body")
	}
	v, err := c.body(c.this, args...)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func (c Closure) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }

// ── Func ──────────────────────────────────────────────────────────────────────

// Func wraps a plain Go function value.
type Func struct {
	fn reflect.Value
}

// FuncOf wraps fn. The result is not callable unless fn is a non-nil func.
func FuncOf(fn any) Func {
	return Func{fn: reflect.ValueOf(fn)}
}

func (f Func) valid() bool {
	return f.fn.IsValid() && f.fn.Kind() == reflect.Func && !f.fn.IsNil()
}

func (f Func) Call(args ...any) ([]any, error) {
	if !f.valid() {
		return nil, errors.New("callable: not a function")
	}
	return call(f.fn, args)
}

func (f Func) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }

// ── Reference ─────────────────────────────────────────────────────────────────

// Reference is a "Class::method" spec returned untouched because static
// resolution is switched off. Call looks the static method up at call time.
type Reference struct {
	spec    string
	classes ClassRegistry
}

// String returns the spec exactly as it was passed to Resolve.
func (r Reference) String() string { return r.spec }

func (r Reference) Call(args ...any) ([]any, error) {
	p, _ := Parse(r.spec)
	class, ok := lookupClass(r.classes, p.Class)
	if !ok {
		return nil, classNotFound(p.Class)
	}
	fn, ok := class.static(p.Method)
	if !ok {
		return nil, fmt.Errorf("callable: non-static method %s::%s cannot be called statically", p.Class, p.Method)
	}
	return call(fn, args)
}

func (r Reference) MarshalJSON() ([]byte, error) { return json.Marshal(r.spec) }
