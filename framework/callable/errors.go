package callable

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrMethodNotFound  = errors.New("method not found")
	ErrNotResolvable   = errors.New("not resolvable")
	ErrNotInstantiable = errors.New("class not instantiable")

	ErrArgumentCount = errors.New("too few arguments")
	ErrArgumentType  = errors.New("argument type mismatch")
)

// ResolveError is returned by Resolver.Resolve. Kind is one of the
// resolution sentinels above; use errors.Is to branch on it.
type ResolveError struct {
	Kind   error
	Class  string
	Method string
	Spec   any
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case ErrClassNotFound:
		return fmt.Sprintf("Class %s does not exist", e.Class)
	case ErrMethodNotFound:
		return fmt.Sprintf("Object class %s does not have method %s", e.Class, e.Method)
	case ErrNotInstantiable:
		return fmt.Sprintf("Class %s is not instantiable", e.Class)
	}
	return fmt.Sprintf("%s is not resolvable", Render(e.Spec))
}

func (e *ResolveError) Unwrap() error { return e.Kind }

func classNotFound(class string) error {
	return &ResolveError{Kind: ErrClassNotFound, Class: class}
}

func methodNotFound(class, method string) error {
	return &ResolveError{Kind: ErrMethodNotFound, Class: class, Method: method}
}

func notInstantiable(class, method string) error {
	return &ResolveError{Kind: ErrNotInstantiable, Class: class, Method: method}
}

func notResolvable(spec any) error {
	return &ResolveError{Kind: ErrNotResolvable, Spec: spec}
}

// Render formats a spec for messages and logs: scalars verbatim,
// everything else as JSON. Values JSON cannot encode fall back to their type.
// Booleans render as "1" and "".
func Render(spec any) string {
	if spec == nil {
		return ""
	}
	switch v := reflect.ValueOf(spec); v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return "1"
		}
		return ""
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(spec)
	}
	b, err := json.Marshal(spec)
	if err != nil {
		return fmt.Sprintf("%T", spec)
	}
	return string(b)
}
