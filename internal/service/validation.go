package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("student_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseStudentStatus(fl.Field().String())
		return ok
	})
	return v
}

// validationError converts validator output into a ValidationError whose
// message names each offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return appErrors.Clone(appErrors.ErrValidation, strings.Join(parts, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: campo obrigatório", fe.Field())
	case "min":
		return fmt.Sprintf("%s: mínimo de %s caracteres", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: máximo de %s caracteres", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s: e-mail inválido", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s: valor deve ser um de [%s]", fe.Field(), fe.Param())
	case "student_status":
		return fmt.Sprintf("%s: valor deve ser um de [active inactive ativo inativo]", fe.Field())
	case "gt":
		return fmt.Sprintf("%s: deve ser maior que %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s: deve ser maior ou igual a %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: inválido (%s)", fe.Field(), fe.Tag())
	}
}
