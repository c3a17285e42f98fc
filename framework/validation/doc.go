// Package validation checks flat string inputs against pipe-separated rules.
//
//	v := validation.Make(map[string]string{
//	    "method":  "GET",
//	    "handler": `App\Http\UserController@index`,
//	}, validation.Rules{
//	    "method":  "required|in:GET,POST,PUT,PATCH,DELETE",
//	    "handler": "required|callback",
//	})
//
//	if v.Fails() {
//	    // {"errors": {"handler": ["The handler field is required."]}}
//	}
//
// # Rules
//
//   - required, string, numeric, integer, email, url
//   - min:n, max:n (UTF-8 characters)
//   - in:a,b and not_in:a,b
//   - starts_with:a,b
//   - alpha_dash, regex:pattern
//   - same:other
//   - nullable stops checking an empty field
//   - sometimes skips a field absent from the input
//   - callback accepts Class@method, Class->method, Class::method or a bare
//     class path invoked through __invoke
//
// Fields are checked in sorted order and the first failing rule of a field
// ends that field. An unknown rule name is reported as an error on the field.
package validation
