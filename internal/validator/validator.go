package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"servicesbladi_backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("request_status", func(fl validator.FieldLevel) bool {
		return models.RequestStatus(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("consultation_type", func(fl validator.FieldLevel) bool {
		switch models.ConsultationType(fl.Field().String()) {
		case models.ConsultationInPerson, models.ConsultationVideo, models.ConsultationPhone:
			return true
		}
		return false
	})
}

// ValidateStruct runs struct tag validation and returns a map of
// field name to human-readable problem.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	problems := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		problems[strings.ToLower(fe.Field())] = describe(fe)
	}
	return problems
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "request_status":
		return "is not a valid request status"
	case "consultation_type":
		return "is not a valid consultation type"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
