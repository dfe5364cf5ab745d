// Package validator wraps go-playground/validator behind a small interface so
// usecases validate inputs without touching the library directly.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	libvalidator "github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// Validator validates annotated structs.
type Validator interface {
	Validate(data any) error
}

// FieldErrors is a field-to-message map returned when validation fails.
// Keys are snake_case field names matching the JSON conventions.
type FieldErrors map[string]string

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(fe)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (fe FieldErrors) Values() map[string]string {
	return fe
}

// V10 implements Validator using go-playground/validator v10.
type V10 struct {
	validate   *libvalidator.Validate
	translator ut.Translator
}

// NewV10 constructs a V10 validator with English translations.
func NewV10() (*V10, error) {
	validate := libvalidator.New(libvalidator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10{validate: validate, translator: enTrans}, nil
}

// Validate validates a struct and returns FieldErrors on failure.
func (v *V10) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs libvalidator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	fields := make(FieldErrors, len(validateErrs))
	for _, fe := range validateErrs {
		fields[toSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return fields
}

func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	prev := rune(0)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}

	return b.String()
}
