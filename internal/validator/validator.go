// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"weddingbudget/internal/models"
)

var styleTagRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,49}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom validations to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("vendor_category", validateVendorCategory)
	_ = v.RegisterValidation("style_tag", validateStyleTag)
}

func validateVendorCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).IsValid()
}

// Style tags are lowercase slugs such as "garden" or "black-tie".
func validateStyleTag(fl validator.FieldLevel) bool {
	return styleTagRegex.MatchString(fl.Field().String())
}
