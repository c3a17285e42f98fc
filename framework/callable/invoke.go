package callable

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// goMethodName maps a spec method name onto the Go method it dispatches to.
func goMethodName(name string) string {
	if strings.EqualFold(name, InvokeMethod) {
		return "Invoke"
	}
	return name
}

// findMethod looks name up in t's method set, ignoring case.
func findMethod(t reflect.Type, name string) (reflect.Method, bool) {
	if t == nil {
		return reflect.Method{}, false
	}
	name = goMethodName(name)
	if m, ok := t.MethodByName(name); ok {
		return m, true
	}
	for i := 0; i < t.NumMethod(); i++ {
		if m := t.Method(i); strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

// boundMethod returns instance's method called name as a func value.
func boundMethod(instance any, name string) (reflect.Value, bool) {
	if instance == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(instance)
	m, ok := findMethod(v.Type(), name)
	if !ok {
		return reflect.Value{}, false
	}
	return v.Method(m.Index), true
}

// call invokes fn with args. Surplus arguments to a non-variadic func are
// dropped, a nil argument becomes the parameter's zero value and a trailing
// error result is returned as the call error.
func call(fn reflect.Value, args []any) ([]any, error) {
	t := fn.Type()
	in, err := arguments(t, args)
	if err != nil {
		return nil, err
	}
	return results(t, fn.Call(in))
}

func arguments(t reflect.Type, args []any) ([]reflect.Value, error) {
	n := t.NumIn()
	fixed := n
	if t.IsVariadic() {
		fixed--
	} else if len(args) > n {
		args = args[:n]
	}
	if len(args) < fixed {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= fixed {
			pt = t.In(n - 1).Elem()
		} else {
			pt = t.In(i)
		}
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("%w: argument %d: %s is not assignable to %s", ErrArgumentType, i+1, v.Type(), pt)
		}
		in[i] = v
	}
	return in, nil
}

func results(t reflect.Type, out []reflect.Value) ([]any, error) {
	var err error
	if n := t.NumOut(); n > 0 && t.Out(n-1) == errorType {
		if last := out[n-1]; !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:n-1]
	}
	vals := make([]any, len(out))
	for i, o := range out {
		vals[i] = o.Interface()
	}
	return vals, err
}
