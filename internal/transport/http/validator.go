package http

import (
	"showcase/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// NewValidator returns the echo validator with the gallery rules registered.
func NewValidator() *CustomValidator {
	validate := validator.New()

	// category: one of models.Categories, case-insensitive
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := models.CanonicalCategory(fl.Field().String())
		return ok
	})

	return &CustomValidator{validator: validate}
}
