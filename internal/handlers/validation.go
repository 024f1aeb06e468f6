package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"emotionquest/internal/models"
	"emotionquest/internal/utils"
)

// requestValidator wraps go-playground validator with the emotion rule
type requestValidator struct {
	validate *validator.Validate
}

var requests = newRequestValidator()

func newRequestValidator() *requestValidator {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("emotion", validateEmotion)

	return &requestValidator{validate: v}
}

// Validate checks a request struct and reports the first failure as a
// utils.ValidationError
func (rv *requestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return utils.ValidationError{Field: fe.Field(), Message: validationMessage(fe)}
}

func validateEmotion(fl validator.FieldLevel) bool {
	_, err := models.ParseEmotion(fl.Field().String())
	return err == nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "emotion":
		names := make([]string, len(models.AllEmotions))
		for i, e := range models.AllEmotions {
			names[i] = e.String()
		}
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(names, ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
