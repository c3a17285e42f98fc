package callable

import (
	"fmt"
	"reflect"
)

type bindingState uint8

const (
	bindingDisabled bindingState = iota
	bindingNull
	bindingValue
)

// Binding is the value a Resolver hands to class constructors and rebinds
// closures to. It is tri-state: disabled (the zero value), null, or a value.
//
// Disabled and null differ only for closures: a null binding unbinds a
// closure, a disabled one leaves the closure's own context in place.
type Binding struct {
	state bindingState
	value any
}

// Disabled returns the "no binding configured" sentinel.
func Disabled() Binding { return Binding{} }

// Null returns a binding explicitly set to nothing.
func Null() Binding { return Binding{state: bindingNull} }

// Bind wraps v. A nil interface yields Null().
//
//	r.SetBinding(callable.Bind(app))
func Bind(v any) Binding {
	if v == nil {
		return Null()
	}
	return Binding{state: bindingValue, value: v}
}

func (b Binding) IsDisabled() bool { return b.state == bindingDisabled }
func (b Binding) IsNull() bool     { return b.state == bindingNull }

// Value returns the bound value, or nil when disabled or null.
func (b Binding) Value() any { return b.value }

// IsObject reports whether the binding holds a reference-like value
// (pointer, struct, func, chan). Scalars, strings, slices and maps are not
// objects.
func (b Binding) IsObject() bool {
	if b.state != bindingValue {
		return false
	}
	switch reflect.TypeOf(b.value).Kind() {
	case reflect.Pointer, reflect.Struct, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

// rebinds reports whether closures are rebound under b.
func (b Binding) rebinds() bool {
	return b.state == bindingNull || b.IsObject()
}

func (b Binding) String() string {
	switch b.state {
	case bindingDisabled:
		return "disabled"
	case bindingNull:
		return "null"
	}
	return fmt.Sprintf("%T", b.value)
}
