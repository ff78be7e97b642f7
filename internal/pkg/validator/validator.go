package validator

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"parkly/internal/pkg/errs"
)

var validate = validator.New()

// Fields maps each failing field to the rule it broke.
func Fields(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Struct returns a validation-kind error listing the failing fields, or nil.
func Struct(v any) error {
	fields := Fields(v)
	if len(fields) == 0 {
		return nil
	}

	parts := make([]string, 0, len(fields))
	for field, tag := range fields {
		parts = append(parts, field+":"+tag)
	}
	sort.Strings(parts)
	return errs.Validation("invalid fields: %s", strings.Join(parts, ", "))
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*out = v
	}
	return ok
}
