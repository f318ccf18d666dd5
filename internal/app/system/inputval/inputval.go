// Package inputval validates submitted structs with go-playground/validator
// and turns failures into messages fit to show an applicant.
//
// Struct fields name themselves in messages through a `label` tag, falling
// back to the json name:
//
//	type Input struct {
//	    Email string `json:"email" validate:"omitempty,email" label:"Email address"`
//	}
package inputval

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// messages override the stock English translations. {0} is the label,
// {1} the tag parameter.
var messages = map[string]string{
	"required": "{0} is required.",
	"max":      "{0} must be at most {1} characters.",
	"email":    "A valid email address is required.",
	"numeric":  "{0} must contain digits only.",
	"datetime": "{0} must be a date like 2006-01-02.",
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	eng := en.New()
	uni := ut.New(eng, eng)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if l := fld.Tag.Get("label"); l != "" {
			return l
		}
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	for tag, text := range messages {
		tag, text := tag, text
		_ = validate.RegisterTranslation(tag, translator,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, err := t.T(tag, fe.Field(), fe.Param())
				if err != nil {
					return fe.Error()
				}
				return s
			},
		)
	}
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string // struct namespace, e.g. "Student.Present.PostalCode"
	Tag     string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := r.Messages()
	return strings.Join(msgs, "; ")
}

// Messages returns every message in struct order.
func (r *Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

// Validate runs the `validate` tags of v, which must be a struct or a
// pointer to one.
func Validate(v any) *Result {
	res := &Result{}
	err := validate.Struct(v)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructNamespace(),
			Tag:     fe.Tag(),
			Message: fe.Translate(translator),
		})
	}
	return res
}
