// Package validation checks request structs with go-playground/validator and
// reports the first failing field with a user-facing message.
//
// Messages come from struct tags: `msg_<tag>` for one rule, `msg` for any
// rule of the field.
//
//	type form struct {
//	    Title string `json:"title" validate:"notblank" msg:"Title is required."`
//	}
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Error is a field-attributed, user-correctable rejection.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
			return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
		})
		_ = v.RegisterValidation("hasletter", func(fl validator.FieldLevel) bool {
			return strings.ContainsFunc(fl.Field().String(), isASCIILetter)
		})
		_ = v.RegisterValidation("hasdigit", func(fl validator.FieldLevel) bool {
			return strings.ContainsFunc(fl.Field().String(), unicode.IsDigit)
		})
		validate = v
	})
	return validate
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Struct returns nil or the *Error of the first failing field, in declaration
// order. Errors other than validation failures are returned as is.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &Error{
		Field:   fe.Field(),
		Message: message(s, fe),
	}
}

func message(s any, fe validator.FieldError) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if m := f.Tag.Get("msg_" + fe.Tag()); m != "" {
				return m
			}
			if m := f.Tag.Get("msg"); m != "" {
				return m
			}
		}
	}
	return fe.Field() + " is invalid."
}
