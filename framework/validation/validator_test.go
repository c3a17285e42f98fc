package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/km-arc/go-callable/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Fails() {
			t.Errorf("expected PASS, got FAIL; errors: %+v", v.Errors().Bag)
		}
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Passes() {
			t.Errorf("expected FAIL on field %q, but validator PASSED", field)
		}
		if v.Errors().First(field) == "" {
			t.Errorf("expected error on field %q, none found. Errors: %+v", field, v.Errors().Bag)
		}
	})
}

// ── required ─────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"name": "required"}

	pass(t, "non-empty value", map[string]string{"name": "Alice"}, r)
	fail(t, "empty string", "name", map[string]string{"name": ""}, r)
	fail(t, "whitespace only", "name", map[string]string{"name": "   "}, r)
	fail(t, "missing key", "name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required"})
	_ = v.Fails()
	if got, want := v.Errors().First("name"), "The name field is required."; got != want {
		t.Errorf("message: got %q want %q", got, want)
	}
}

// ── callback ─────────────────────────────────────────────────────────────────

func TestValidation_Callback(t *testing.T) {
	r := validation.Rules{"handler": "callback"}

	pass(t, "at", map[string]string{"handler": `App\Http\UserController@index`}, r)
	pass(t, "arrow", map[string]string{"handler": `UserController->show`}, r)
	pass(t, "static", map[string]string{"handler": `\App\Support\Health::check`}, r)
	pass(t, "invokable", map[string]string{"handler": `App\Http\HomeController`}, r)
	fail(t, "spaces", "handler", map[string]string{"handler": "not a class"}, r)
	fail(t, "trailing operator", "handler", map[string]string{"handler": "Class@"}, r)
	fail(t, "digit class", "handler", map[string]string{"handler": "9Class@run"}, r)
}

// ── strings ──────────────────────────────────────────────────────────────────

func TestValidation_MinMax(t *testing.T) {
	r := validation.Rules{"name": "min:3|max:5"}

	pass(t, "exactly 3", map[string]string{"name": "abc"}, r)
	pass(t, "exactly 5", map[string]string{"name": "abcde"}, r)
	pass(t, "multibyte counted as runes", map[string]string{"name": "日本語"}, r)
	fail(t, "too short", "name", map[string]string{"name": "ab"}, r)
	fail(t, "too long", "name", map[string]string{"name": "abcdef"}, r)
}

func TestValidation_In_NotIn(t *testing.T) {
	in := validation.Rules{"method": "in:GET, POST"}
	pass(t, "in list", map[string]string{"method": "POST"}, in)
	fail(t, "not in list", "method", map[string]string{"method": "PUT"}, in)

	notIn := validation.Rules{"name": "not_in:admin,root"}
	pass(t, "allowed", map[string]string{"name": "alice"}, notIn)
	fail(t, "reserved", "name", map[string]string{"name": "root"}, notIn)
}

func TestValidation_StartsWith(t *testing.T) {
	r := validation.Rules{"path": "starts_with:/"}

	pass(t, "slash", map[string]string{"path": "/users"}, r)
	fail(t, "relative", "path", map[string]string{"path": "users"}, r)

	v := validation.Make(map[string]string{"path": "x"}, r)
	_ = v.Fails()
	if got, want := v.Errors().First("path"), "The path must start with one of the following: /."; got != want {
		t.Errorf("message: got %q want %q", got, want)
	}
}

func TestValidation_Formats(t *testing.T) {
	pass(t, "alpha_dash", map[string]string{"slug": "my-slug_1"}, validation.Rules{"slug": "alpha_dash"})
	fail(t, "alpha_dash space", "slug", map[string]string{"slug": "my slug"}, validation.Rules{"slug": "alpha_dash"})
	pass(t, "regex", map[string]string{"code": "AB12"}, validation.Rules{"code": "regex:^[A-Z]{2}[0-9]{2}$"})
	fail(t, "regex mismatch", "code", map[string]string{"code": "ab12"}, validation.Rules{"code": "regex:^[A-Z]{2}[0-9]{2}$"})
	pass(t, "email", map[string]string{"email": "user@example.com"}, validation.Rules{"email": "email"})
	fail(t, "email", "email", map[string]string{"email": "user@"}, validation.Rules{"email": "email"})
	pass(t, "url", map[string]string{"url": "https://example.com"}, validation.Rules{"url": "url"})
	fail(t, "url", "url", map[string]string{"url": "ftp://example.com"}, validation.Rules{"url": "url"})
	pass(t, "integer", map[string]string{"n": "42"}, validation.Rules{"n": "integer"})
	fail(t, "integer", "n", map[string]string{"n": "4.2"}, validation.Rules{"n": "integer"})
	pass(t, "numeric", map[string]string{"n": "4.2"}, validation.Rules{"n": "numeric"})
	fail(t, "numeric", "n", map[string]string{"n": "four"}, validation.Rules{"n": "numeric"})
}

func TestValidation_Same(t *testing.T) {
	r := validation.Rules{"confirm": "same:password"}
	pass(t, "match", map[string]string{"password": "s3cret", "confirm": "s3cret"}, r)
	fail(t, "mismatch", "confirm", map[string]string{"password": "s3cret", "confirm": "other"}, r)
}

// ── control rules ────────────────────────────────────────────────────────────

func TestValidation_Nullable(t *testing.T) {
	r := validation.Rules{"nickname": "nullable|min:3"}

	pass(t, "empty", map[string]string{"nickname": ""}, r)
	pass(t, "missing", map[string]string{}, r)
	pass(t, "valid", map[string]string{"nickname": "bob"}, r)
	fail(t, "too short", "nickname", map[string]string{"nickname": "bo"}, r)
}

func TestValidation_Sometimes(t *testing.T) {
	r := validation.Rules{"prefix": "sometimes|required|starts_with:/"}

	pass(t, "absent", map[string]string{}, r)
	fail(t, "present but empty", "prefix", map[string]string{"prefix": ""}, r)
	fail(t, "present and invalid", "prefix", map[string]string{"prefix": "api"}, r)
}

func TestValidation_UnknownRule(t *testing.T) {
	fail(t, "unknown", "name", map[string]string{"name": "x"}, validation.Rules{"name": "shiny"})
}

func TestValidation_StopsOnFirstFailure(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required|min:3"})
	_ = v.Fails()
	if n := len(v.Errors().Bag["name"]); n != 1 {
		t.Errorf("expected 1 error, got %d: %v", n, v.Errors().Bag["name"])
	}
}

// ── errors ───────────────────────────────────────────────────────────────────

func TestValidation_Validate_ReturnsBag(t *testing.T) {
	v := validation.Make(map[string]string{"b": "", "a": ""}, validation.Rules{
		"a": "required",
		"b": "required",
	})
	err := v.Validate()
	if err == nil {
		t.Fatal("expected an error")
	}
	want := "The a field is required. The b field is required."
	if err.Error() != want {
		t.Errorf("Error(): got %q want %q", err.Error(), want)
	}

	if validation.Make(nil, validation.Rules{}).Validate() != nil {
		t.Error("empty rules should validate")
	}
}

func TestValidation_Errors_JSON(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"path": "required"})
	_ = v.Fails()

	b, err := json.Marshal(v.Errors())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"errors":{"path":["The path field is required."]}}`
	if string(b) != want {
		t.Errorf("json: got %s want %s", b, want)
	}
}
