package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/km-arc/go-callable/framework/callable"
)

// Errors is the message bag. JSON output: {"errors": {"field": ["msg"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins every message in field order so a bag can be returned as an error.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, e.Bag[f]...)
	}
	return strings.Join(msgs, " ")
}

// Rules maps a field to a pipe-separated rule string,
// e.g. Rules{"handler": "required|callback", "method": "required|in:GET,POST"}
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{data: data, rules: rules, errors: &Errors{}}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	if !v.ran {
		v.validate()
		v.ran = true
	}
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

func (v *Validator) Errors() *Errors { return v.errors }

// Validate runs the rules and returns the bag as an error, or nil.
func (v *Validator) Validate() error {
	if v.Fails() {
		return v.errors
	}
	return nil
}

// result of a single rule check
type outcome int

const (
	pass outcome = iota
	fail
	skip // stop checking the field without recording an error
)

type rule func(v *Validator, value, param string) outcome

var (
	alphaDash = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	httpURL   = regexp.MustCompile(`^https?://`)
)

var checks = map[string]rule{
	"required": func(_ *Validator, value, _ string) outcome {
		return check(strings.TrimSpace(value) != "")
	},
	"string": func(*Validator, string, string) outcome { return pass },
	"numeric": func(_ *Validator, value, _ string) outcome {
		_, err := strconv.ParseFloat(value, 64)
		return check(err == nil)
	},
	"integer": func(_ *Validator, value, _ string) outcome {
		_, err := strconv.Atoi(value)
		return check(err == nil)
	},
	"email": func(_ *Validator, value, _ string) outcome {
		_, err := mail.ParseAddress(value)
		return check(err == nil)
	},
	"url": func(_ *Validator, value, _ string) outcome {
		return check(httpURL.MatchString(value))
	},
	"min": func(_ *Validator, value, param string) outcome {
		n, _ := strconv.Atoi(param)
		return check(utf8.RuneCountInString(value) >= n)
	},
	"max": func(_ *Validator, value, param string) outcome {
		n, _ := strconv.Atoi(param)
		return check(utf8.RuneCountInString(value) <= n)
	},
	"in": func(_ *Validator, value, param string) outcome {
		return check(inList(value, param))
	},
	"not_in": func(_ *Validator, value, param string) outcome {
		return check(!inList(value, param))
	},
	"starts_with": func(_ *Validator, value, param string) outcome {
		for _, prefix := range strings.Split(param, ",") {
			if strings.HasPrefix(value, prefix) {
				return pass
			}
		}
		return fail
	},
	"alpha_dash": func(_ *Validator, value, _ string) outcome {
		return check(alphaDash.MatchString(value))
	},
	"regex": func(_ *Validator, value, param string) outcome {
		re, err := regexp.Compile(param)
		return check(err == nil && re.MatchString(value))
	},
	"same": func(v *Validator, value, param string) outcome {
		return check(v.data[param] == value)
	},
	"nullable": func(_ *Validator, value, _ string) outcome {
		if value == "" {
			return skip
		}
		return pass
	},
	"sometimes": func(*Validator, string, string) outcome {
		return pass
	},
	"callback": func(_ *Validator, value, _ string) outcome {
		_, ok := callable.Parse(value)
		return check(ok || callable.IsClassPath(value))
	},
}

var messages = map[string]string{
	"required":    "The %s field is required.",
	"numeric":     "The %s must be a number.",
	"integer":     "The %s must be an integer.",
	"email":       "The %s must be a valid email address.",
	"url":         "The %s must be a valid URL.",
	"min":         "The %s must be at least %s characters.",
	"max":         "The %s may not be greater than %s characters.",
	"in":          "The selected %s is invalid.",
	"not_in":      "The selected %s is invalid.",
	"starts_with": "The %s must start with one of the following: %s.",
	"alpha_dash":  "The %s may only contain letters, numbers, dashes and underscores.",
	"regex":       "The %s format is invalid.",
	"same":        "The %s and %s must match.",
	"callback":    "The %s must be a callback such as Class@method or Class::method.",
}

func check(ok bool) outcome {
	if ok {
		return pass
	}
	return fail
}

func inList(value, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}

// validate checks fields in sorted order so messages are deterministic.
// The first failing rule of a field ends that field.
func (v *Validator) validate() {
	fields := make([]string, 0, len(v.rules))
	for f := range v.rules {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	for _, field := range fields {
		value, present := v.data[field]
		specs := strings.Split(v.rules[field], "|")
		if !present && slices.Contains(specs, "sometimes") {
			continue
		}

		for _, spec := range specs {
			spec = strings.TrimSpace(spec)
			if spec == "" {
				continue
			}
			name, param, _ := strings.Cut(spec, ":")
			fn, ok := checks[name]
			if !ok {
				v.errors.add(field, fmt.Sprintf("Unknown validation rule %q.", name))
				break
			}

			res := fn(v, value, param)
			if res == fail {
				v.errors.add(field, message(name, field, param))
			}
			if res != pass {
				break
			}
		}
	}
}

func message(rule, field, param string) string {
	format := messages[rule]
	if strings.Count(format, "%s") == 2 {
		return fmt.Sprintf(format, field, param)
	}
	return fmt.Sprintf(format, field)
}
