package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Reel/internal/api/apierr"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/labstack/echo/v4"
)

// NewValidator returns the validator shared by every controller. Field
// names in validation errors are taken from the json tags, and the
// additional 'movieyear' rule accepts any year a movie may be released in.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	if err := validate.RegisterValidation("movieyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= media.FirstFilmYear && year <= int64(media.MaxFilmYear(time.Now()))
	}); err != nil {
		panic(fmt.Sprintf("failed to register movieyear validation: %s", err))
	}

	return validate
}

// BindAndValidate decodes the request body in to dst and validates it,
// returning an APIError describing the problem if either step fails.
func BindAndValidate(ec echo.Context, validate *validator.Validate, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(ec, dst); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if message, ok := httpErr.Message.(string); ok {
				return apierr.Validation(fmt.Sprintf("invalid request body: %s", message), nil)
			}
		}

		return apierr.Validation("invalid request body", nil)
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}

		details := make(map[string]any, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details[fieldPath(fieldErr)] = describe(fieldErr)
		}

		return apierr.Validation("request body failed validation", details)
	}

	return nil
}

// fieldPath strips the name of the request struct from the namespace.
func fieldPath(fieldErr validator.FieldError) string {
	_, path, found := strings.Cut(fieldErr.Namespace(), ".")
	if !found {
		return fieldErr.Field()
	}

	return path
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "movieyear":
		return fmt.Sprintf("must be between %d and %d", media.FirstFilmYear, media.MaxFilmYear(time.Now()))
	default:
		return fmt.Sprintf("failed '%s' validation", fieldErr.Tag())
	}
}
