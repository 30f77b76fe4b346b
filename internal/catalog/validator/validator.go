package validator

import (
	"errors"
	"strings"
	"time"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/model"

	govalidator "github.com/go-playground/validator/v10"
)

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

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors govalidator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperrors.Internal("unexpected validation failure", err)
	}

	details := make(map[string]any, len(fieldErrors))
	for _, fe := range fieldErrors {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return apperrors.Validation("request validation failed", details)
}
