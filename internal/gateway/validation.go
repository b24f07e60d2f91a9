package gateway

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength     = 80
	MaxEmailLength    = 254
	MaxPasswordLength = 80
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the fields rejected before any network call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Message returns the message for field, if it was rejected.
func (e *ValidationError) Message(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}

type signInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpForm struct {
	Name     string `json:"name" validate:"required,notblank,max=80"`
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required,strongpassword,max=80"`
}

type accountForm struct {
	Name            string `json:"name" validate:"required,notblank,max=80"`
	Email           string `json:"email" validate:"required,max=254,email"`
	Password        string `json:"password" validate:"omitempty,strongpassword,max=80"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

type conversationForm struct {
	Email string `json:"email" validate:"required,max=254,email"`
}

type conversationRef struct {
	ID string `json:"id" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// StrongPassword requires at least one ASCII letter, one digit and one
// symbol (anything that is neither an ASCII letter, a digit nor whitespace).
func StrongPassword(value string) bool {
	var letter, digit, symbol bool
	for _, r := range value {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case unicode.IsSpace(r):
		default:
			symbol = true
		}
	}
	return letter && digit && symbol
}

// check validates form and converts failures into a *ValidationError.
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "max":
		return field + " is too long"
	case "email":
		return "invalid email"
	case "strongpassword":
		return "password must contain at least one letter, one number and one special character"
	case "eqfield":
		return "passwords do not match"
	}
	return field + " is invalid"
}

func validateSignIn(email, password string) error {
	return check(signInForm{Email: email, Password: password})
}

func validateSignUp(name, email, password string) error {
	return check(signUpForm{Name: name, Email: email, Password: password})
}

func validateAccountUpdate(in AccountInput) error {
	return check(accountForm{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	})
}

func validateNewConversation(email string) error {
	return check(conversationForm{Email: email})
}

func validateConversationID(id string) error {
	return check(conversationRef{ID: id})
}
