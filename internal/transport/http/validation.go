package http

import (
	"github.com/go-playground/validator/v10"
	"issue-service/internal/models"
	"reflect"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("issuestatus", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return models.IssueStatus(fl.Field().String()).Valid()
	})

	return v
}
