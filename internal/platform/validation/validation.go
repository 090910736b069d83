// Package validation wraps go-playground/validator with field-keyed,
// human-readable error messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name (as it appears in JSON and forms) to its messages.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field. Only the first message per field is kept.
func (e Errors) Add(field, msg string) {
	if len(e[field]) > 0 {
		return
	}
	e[field] = []string{msg}
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has reports whether field has a message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// OrNil returns nil when no field failed, so callers can return it as error.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsErrors extracts Errors from err.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

const (
	defaultRequired = "Campo obrigatório"
	defaultInvalid  = "Valor inválido"
)

// Validator checks struct tags and translates failures into Errors.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &Validator{v: v}
}

// fieldName prefers the json name, then the form name, then the Go name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Check validates s. messages overrides the text reported per field; fields
// without an entry get a generic message. It returns nil when s is valid.
func (v *Validator) Check(s interface{}, messages map[string]string) Errors {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	out := Errors{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("_", err.Error())
		return out
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if msg, ok := messages[field]; ok {
			out.Add(field, msg)
			continue
		}
		if fe.Tag() == "required" {
			out.Add(field, defaultRequired)
		} else {
			out.Add(field, defaultInvalid)
		}
	}
	return out
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.Check(i, nil).OrNil()
}
