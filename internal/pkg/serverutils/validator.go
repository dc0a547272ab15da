package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateStruct runs the validate tags on a bound request body and turns
// the first failure into a 400 the error middleware can pass through.
func ValidateStruct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	fe := fieldErrors[0]
	msg := fmt.Sprintf("field '%s' failed on '%s'", strings.ToLower(fe.Field()), fe.Tag())
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
