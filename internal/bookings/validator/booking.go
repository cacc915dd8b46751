package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bookline/pkg/logger"
	"bookline/pkg/model"
)

// Loose phone shape: 7-15 characters of digits, spaces, hyphens,
// parentheses, dots, with an optional leading plus.
var phoneRegex = regexp.MustCompile(`^[+]?[\d\s\-().]{7,15}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("booking_phone", validatePhone); err != nil {
		log.Fatal("Failed to register 'booking_phone' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// WindowError marks a structurally unusable (start, end) pair. It is kept
// distinct from field-level ValidationErrors so callers can map it to a
// different failure class.
type WindowError struct {
	Message string
}

func (e *WindowError) Error() string {
	return e.Message
}

// ValidateWindow sanity-checks a proposed (start, end) pair. Pure; no side
// effects. Zero instants count as unparseable.
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &WindowError{Message: "start_time and end_time must be valid timestamps"}
	}
	if !end.After(start) {
		return &WindowError{Message: "end_time must be after start_time"}
	}
	return nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return ValidateWindow(booking.StartTime, booking.EndTime)
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartTime != nil && update.EndTime != nil {
		return ValidateWindow(*update.StartTime, *update.EndTime)
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "booking_phone":
			message = fmt.Sprintf("%s must be 7-15 characters of digits, spaces, hyphens, parentheses or plus", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
