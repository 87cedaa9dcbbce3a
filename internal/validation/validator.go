// Package validation checks service requests with go-playground/validator and
// reports failures as domain validation errors.
//
// Besides the built-in tags it registers:
//
//	notblank   the string has a non-whitespace character
//	fieldtype  the value names a domain.FieldType
package validation

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
)

// Validator validates request structs.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
		return domain.FieldType(fl.Field().String()).Valid()
	})
	return &Validator{v: v}
}

// Validate returns nil or a validation error whose message lists every failing
// field in name order, as in "name is required; type must be one of: ...".
// The error's Details map each field to its message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	var fails validator.ValidationErrors
	if !errors.As(err, &fails) {
		return err
	}

	byField := make(map[string]string, len(fails))
	for _, f := range fails {
		byField[f.Field()] = describe(f)
	}

	parts := make([]string, 0, len(byField))
	for _, field := range slices.Sorted(maps.Keys(byField)) {
		parts = append(parts, field+" "+byField[field])
	}
	return domainerrors.ValidationWithDetails(strings.Join(parts, "; "), byField)
}

// jsonName reports fields by their JSON name, which is what API and seed
// authors see.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func describe(f validator.FieldError) string {
	switch f.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must be at least " + f.Param() + " characters"
	case "max":
		return "must not exceed " + f.Param() + " characters"
	case "oneof":
		return "must be one of: " + f.Param()
	case "fieldtype":
		names := make([]string, len(domain.FieldTypes))
		for i, ft := range domain.FieldTypes {
			names[i] = string(ft)
		}
		return "must be one of: " + strings.Join(names, ", ")
	default:
		return "is invalid"
	}
}
