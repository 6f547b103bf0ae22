package patient

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"patient-manager/internal/apperrors"
)

var patientIDPattern = regexp.MustCompile(`^P\d{3}$`)

// Validator wraps go-playground/validator with the patient-specific rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("patient_id", validatePatientID)
	return &Validator{validate: v}
}

func validatePatientID(fl validator.FieldLevel) bool {
	return patientIDPattern.MatchString(fl.Field().String())
}

// Validate returns an apperrors validation error describing the first
// failing field, or nil.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError(err.Error())
	}
	return apperrors.NewValidationError(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "patient_id":
		return fmt.Sprintf("%s must look like P001", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// IsPatientID reports whether id has the canonical "P" + 3 digits form.
func IsPatientID(id string) bool {
	return patientIDPattern.MatchString(id)
}
