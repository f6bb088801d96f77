package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var sessionVariablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_.]*$`)

// Validator checks synthesized descriptors before they are handed to a driver.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the descriptor rules registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("session_variable", validateSessionVariable); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// Validate checks d and returns a *ValidationError listing every offending field.
func (v *Validator) Validate(d any) error {
	if err := v.validate.Struct(d); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

var defaultValidator = NewValidator()

// Validate checks a descriptor with the package validator.
func Validate(d any) error {
	return defaultValidator.Validate(d)
}

// ValidationError lists the descriptor fields that failed validation.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// NewValidationError converts validator errors. Credential values are not echoed.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fieldErrors := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		fe := FieldError{Field: err.Namespace(), Message: errorMessage(err)}
		if !strings.Contains(strings.ToLower(err.Field()), "password") {
			fe.Value = fmt.Sprintf("%v", err.Value())
		}
		fieldErrors = append(fieldErrors, fe)
	}
	return &ValidationError{Errors: fieldErrors}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "descriptor validation failed"
	case 1:
		return fmt.Sprintf("descriptor validation failed: %s", ve.Errors[0].Message)
	default:
		return fmt.Sprintf("descriptor validation failed: %d errors", len(ve.Errors))
	}
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%s must be a hostname or IP address", fe.Field())
	case "session_variable":
		return fmt.Sprintf("%s is not a valid session variable name", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation", fe.Field())
	}
}

func validateSessionVariable(fl validator.FieldLevel) bool {
	return sessionVariablePattern.MatchString(fl.Field().String())
}

// jsonName reports fields by their JSON name so errors read like the descriptor
// output. Fields hidden from JSON are skipped.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return name
}
