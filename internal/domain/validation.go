package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validation struct {
	validator *validator.Validate
}

func NewValidation() *Validation {
	v := validator.New()
	v.RegisterValidation("attributes", validateAttributes)
	return &Validation{validator: v}
}

// validateAttributes rejects empty attribute maps and blank keys
func validateAttributes(fl validator.FieldLevel) bool {
	attrs, ok := fl.Field().Interface().([]map[string]string)
	if !ok {
		return false
	}
	for _, attr := range attrs {
		if len(attr) == 0 {
			return false
		}
		for k := range attr {
			if k == "" {
				return false
			}
		}
	}
	return true
}

// ValidationError wraps the validator's FieldError
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", v.Field, v.Message)
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

// Error implements the error interface so a non-empty set can be returned
// up the stack
func (ve ValidationErrors) Error() string {
	return fmt.Sprintf("%d validation error(s): %v", len(ve), ve.Messages())
}

// Messages converts the errors to a slice of strings
func (ve ValidationErrors) Messages() []string {
	msgs := []string{}
	for _, v := range ve {
		msgs = append(msgs, v.Error())
	}
	return msgs
}

func (v *Validation) Validate(i interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validator.Struct(i)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ValidationErrors{{Field: "", Message: err.Error()}}
		}
		for _, ve := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   ve.Namespace(),
				Message: fmt.Sprintf("failed on the '%s' tag", ve.Tag()),
			})
		}
	}

	return errors
}
