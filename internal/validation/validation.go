// Package validation checks submitted forms and turns failures into the
// messages shown to the visitor.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/happeningnu/happening/internal/model"
)

// SignupForm is the body of POST /signup.
type SignupForm struct {
	Email           string `validate:"email"`
	Username        string `validate:"min=4,max=20"`
	Password        string `validate:"min=8,max=15"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// LoginForm is the body of POST /login. It carries no rules; bad
// credentials are rejected by the lookup itself.
type LoginForm struct {
	Email    string
	Password string
}

// NewEventForm is the body of POST /new_event.
type NewEventForm struct {
	Title    string `validate:"min=4,max=30"`
	URL      string `validate:"url"`
	Location string `validate:"location"`
	Date     string `validate:"datetime=2006-01-02"`
	Category string `validate:"category"`
}

// messages maps a struct field to the text shown when its rule fails.
var messages = map[string]string{
	"SignupForm.Email":           "Email not valid.",
	"SignupForm.Username":        "username should be between 4 to 20 characters.",
	"SignupForm.Password":        "password should be between 8 to 15 characters.",
	"SignupForm.ConfirmPassword": "Passwords not identical.",
	"NewEventForm.Title":         "event title should be between 4 to 30 characters.",
	"NewEventForm.URL":           "URL not valid.",
	"NewEventForm.Location":      "Location not valid.",
	"NewEventForm.Date":          "Date not valid.",
	"NewEventForm.Category":      "Category not valid.",
}

// Errors lists one message per failing field, in field order.
type Errors []string

func (e Errors) Error() string {
	return "validation failed: " + strings.Join(e, " ")
}

// Messages unwraps err into Errors when it is one.
func Messages(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	must("location", func(fl validator.FieldLevel) bool {
		return model.IsValidLocation(fl.Field().String())
	})
	must("category", func(fl validator.FieldLevel) bool {
		return model.IsValidCategory(fl.Field().String())
	})

	return v
}

// Signup validates a signup submission.
func Signup(form SignupForm) error {
	return check(form)
}

// NewEvent validates an event submission.
func NewEvent(form NewEventForm) error {
	return check(form)
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.StructNamespace()]
		if !ok {
			msg = fe.Field() + " not valid."
		}
		out = append(out, msg)
	}
	return out
}
