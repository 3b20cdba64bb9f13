package customvalidator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"solicitud-system/pkg/constants"
)

// RegisterCustomValidations registers the workflow-specific rules on the
// shared validator instance.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("estado", isKnownEstado); err != nil {
		return err
	}
	if err := v.RegisterValidation("notblank", isNotBlank); err != nil {
		return err
	}
	return nil
}

func isKnownEstado(fl validator.FieldLevel) bool {
	return constants.IsValidEstado(fl.Field().String())
}

// isNotBlank rejects strings that are empty after trimming. Rejection and
// cancellation reasons use this; "   " is not a motivo.
func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// EchoValidator adapts validator.Validate to echo's Validator interface.
type EchoValidator struct {
	validator *validator.Validate
}

func NewEchoValidator(v *validator.Validate) *EchoValidator {
	return &EchoValidator{validator: v}
}

func (ev *EchoValidator) Validate(i interface{}) error {
	return ev.validator.Struct(i)
}
