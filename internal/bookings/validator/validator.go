package validator

import (
	"errors"
	"strings"
	"time"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/model"

	govalidator "github.com/go-playground/validator/v10"
)

// Validator validates booking requests, including the lesson_date and
// lesson_time formats ("2006-01-02", zero-padded "15:04").
type Validator struct {
	validate *govalidator.Validate
}

func New() *Validator {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("lesson_date", validLessonDate)
	_ = v.RegisterValidation("lesson_time", validLessonTime)
	return &Validator{validate: v}
}

func validLessonDate(fl govalidator.FieldLevel) bool {
	value := fl.Field().String()
	t, err := time.Parse(model.DateLayout, value)
	return err == nil && t.Format(model.DateLayout) == value
}

func validLessonTime(fl govalidator.FieldLevel) bool {
	value := fl.Field().String()
	t, err := time.Parse(model.TimeLayout, value)
	return err == nil && t.Format(model.TimeLayout) == value
}

// Struct runs struct-tag validation and converts failures into one
// field-keyed ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *govalidator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperrors.Internal("validation failed on a non-struct value", invalid)
	}

	var fieldErrors govalidator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperrors.Internal("unexpected validation failure", err)
	}

	details := make(map[string]any, len(fieldErrors))
	for _, fe := range fieldErrors {
		details[strings.ToLower(fe.Field())] = fieldMessage(fe)
	}
	return apperrors.Validation("request validation failed", details)
}

func fieldMessage(fe govalidator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " item(s) or character(s)"
	case "max":
		return "must have at most " + fe.Param() + " item(s) or character(s)"
	case "e164":
		return "must be a phone number in E.164 format"
	case "email":
		return "must be a valid email address"
	case "uuid4":
		return "must be a UUIDv4"
	case "mongodb":
		return "must be a valid object id"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "lesson_date":
		return "must be a date formatted as " + model.DateLayout
	case "lesson_time":
		return "must be a time formatted as " + model.TimeLayout
	default:
		return "failed validation: " + fe.Tag()
	}
}
