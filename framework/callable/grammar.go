package callable

import "regexp"

// Operator separates class and method in a callback spec string.
type Operator string

const (
	OpNone   Operator = ""
	OpArrow  Operator = "->"
	OpAt     Operator = "@"
	OpStatic Operator = "::"
)

// InvokeMethod is the method used when a spec names only a class.
// It maps to a Go method called Invoke.
const InvokeMethod = "__invoke"

// Method names accept any rune from U+007F upward, which covers every
// non-ASCII character once the spec is UTF-8 encoded.
var (
	specPattern = regexp.MustCompile(
		`^(\\?[a-zA-Z_][a-zA-Z0-9_]*(?:\\[a-zA-Z0-9_]+)*)` + // class
			`(->|@|::)` + // operator
			`([a-zA-Z_\x{7f}-\x{10ffff}][a-zA-Z0-9_\x{7f}-\x{10ffff}]*)$`, // method
	)
	classPattern = regexp.MustCompile(`^\\?[a-zA-Z_][a-zA-Z0-9_]*(?:\\[a-zA-Z0-9_]+)*$`)
)

// Parsed is a callback spec split into its parts.
type Parsed struct {
	Class    string
	Operator Operator
	Method   string
}

// Parse splits "Class::method", "Class->method" or "Class@method".
// When spec does not match, the whole string is the class, the method is
// InvokeMethod and ok is false.
//
//	p, ok := callable.Parse(`App\Http\UserController@index`)
//	// p.Class == `App\Http\UserController`, p.Operator == callable.OpAt, p.Method == "index"
func Parse(spec string) (p Parsed, ok bool) {
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return Parsed{Class: spec, Method: InvokeMethod}, false
	}
	return Parsed{Class: m[1], Operator: Operator(m[2]), Method: m[3]}, true
}

// IsClassPath reports whether s is a bare, namespace-separated class path
// such as `\App\Http\HomeController`.
func IsClassPath(s string) bool {
	return classPattern.MatchString(s)
}

func (p Parsed) String() string {
	if p.Operator == OpNone {
		return p.Class
	}
	return p.Class + string(p.Operator) + p.Method
}
