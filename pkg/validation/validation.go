package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	v         *validator.Validate
	vOnce     sync.Once
	colNameRe = regexp.MustCompile(`^[a-z0-9_]{1,128}$`)
)

// Validator returns a singleton validator with custom rules registered.
// Handlers call it concurrently, so registration happens exactly once.
func Validator() *validator.Validate {
	vOnce.Do(func() {
		v = validator.New()
		// Custom: uploaded file name must have a supported extension
		_ = v.RegisterValidation("upload_ext", func(fl validator.FieldLevel) bool {
			s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			if s == "" {
				return false
			}
			return strings.HasSuffix(s, ".csv") || strings.HasSuffix(s, ".xlsx")
		})
		// Custom: chart type must be one of the supported kinds
		_ = v.RegisterValidation("chart_type", func(fl validator.FieldLevel) bool {
			switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
			case "line", "scatter", "bar":
				return true
			}
			return false
		})
		// Custom: normalized column name (lowercase, underscores)
		_ = v.RegisterValidation("colname", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // pair with required when a value is mandatory
			}
			return colNameRe.MatchString(s)
		})
	})
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for dashboard banners. Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "upload_ext":
				return "VALIDATION: upload must be a .csv or .xlsx file"
			case "chart_type":
				return "VALIDATION: chart type must be line, scatter, or bar"
			case "colname":
				return fmt.Sprintf("VALIDATION: %s is not a valid column name", field)
			case "min", "max", "gte", "lte":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}
