package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo so handlers can
// call c.Validate(req) against the `validate:` tags on request structs.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// ValidationFields flattens a validator error into field -> message pairs so
// forms can be redisplayed with per-field errors instead of one opaque 400.
func ValidationFields(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "this field is required"
		case "email":
			fields[name] = "must be a valid email address"
		case "min":
			fields[name] = "too short (min " + fe.Param() + ")"
		case "max":
			fields[name] = "too long (max " + fe.Param() + ")"
		case "oneof":
			fields[name] = "must be one of: " + fe.Param()
		case "gte":
			fields[name] = "must be at least " + fe.Param()
		case "lte":
			fields[name] = "must be at most " + fe.Param()
		default:
			fields[name] = "invalid value"
		}
	}
	return fields
}
