// Package forms holds the shared form validation and query parsing helpers
// of the screen handlers.
package forms

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError describes one failed validation of a form field.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value any    `json:"value"`
}

// Validate runs the validator over a form struct and flattens the result
// into a field error list. An empty list means the form is valid.
func Validate(v *validator.Validate, data any) []FieldError {
	var fieldErrors []FieldError

	err := v.Struct(data)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return []FieldError{{Field: "form", Tag: "invalid"}}
		}

		for _, ve := range validationErrors {
			fieldErrors = append(fieldErrors, FieldError{
				Field: ve.Field(),
				Tag:   ve.Tag(),
				Value: ve.Value(),
			})
		}
	}

	return fieldErrors
}

// Messages renders a field error list into human readable lines.
func Messages(fieldErrors []FieldError) []string {
	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = "Field '" + fe.Field + "' failed validation tag '" + fe.Tag + "'"
	}

	return messages
}

// ErrInvalidTriState is returned for a tri-state parameter that is neither
// empty nor a recognized boolean literal.
var ErrInvalidTriState = errors.New("invalid boolean filter value")

// TriState parses an optional boolean query parameter. An empty value means
// "no filter" and parses to nil.
func TriState(raw string) (*bool, error) {
	switch strings.ToLower(raw) {
	case "":
		return nil, nil
	case "1", "true", "yes":
		v := true
		return &v, nil
	case "0", "false", "no":
		v := false
		return &v, nil
	default:
		return nil, errors.Wrap(ErrInvalidTriState, raw)
	}
}
