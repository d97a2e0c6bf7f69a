package common

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance for request structs.
var Validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs struct-tag validation and flattens failures into a
// single ErrValidation-wrapped error suitable for a 400 response.
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	ok := false
	if v, isV := err.(validator.ValidationErrors); isV {
		verrs, ok = v, true
	}
	if !ok {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %s failed on %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), ErrValidation)
}
