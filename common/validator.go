package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
var allNumericRe = regexp.MustCompile(`^[0-9]+$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field names by their json tag so error maps match the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("username_charset", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})

	v.RegisterValidation("not_all_numeric", func(fl validator.FieldLevel) bool {
		return !allNumericRe.MatchString(fl.Field().String())
	})

	return v
}

// ValidateStruct runs validation and collects failures into a field-keyed
// map. It returns nil when the payload is valid.
func ValidateStruct(payload interface{}) map[string]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = messageForTag(fe)
	}
	return fields
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "eqfield":
		return "Password fields didn't match."
	case "username_charset":
		return "Username may contain only letters, numbers, and _ . - characters."
	case "not_all_numeric":
		return "Password cannot be entirely numeric."
	default:
		return "Invalid value."
	}
}

// ValidateAndDecode decodes the request body into payload and validates it.
// On failure it writes a 400 response with a field-keyed error map and
// returns false, so handlers can simply return.
func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		NewAppError(http.StatusBadRequest, "Invalid request body", nil).Send(w)
		return false
	}

	if fields := ValidateStruct(payload); fields != nil {
		NewFieldError(http.StatusBadRequest, "Validation failed", fields).Send(w)
		return false
	}

	return true
}
