package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/diagnosis-service/internal/errors"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's custom tags
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := errors.FromValidator(err); len(errs) > 0 {
		return errs
	}
	return err
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("maturity_level", validateMaturityLevel)

	// Report json names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

func validateMaturityLevel(fl validator.FieldLevel) bool {
	_, err := models.ParseMaturityLevel(fl.Field().String())
	return err == nil
}
