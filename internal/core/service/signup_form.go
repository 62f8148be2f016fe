package service

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/talentloop/portal/internal/core/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	fieldValidatorOnce sync.Once
	fieldValidator     *validator.Validate
)

func signupValidator() *validator.Validate {
	fieldValidatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("signup_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		fieldValidator = v
	})
	return fieldValidator
}

// failedTag returns the validator tag that rejected value, or "".
func failedTag(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Tag()
	}
	if err != nil {
		return "invalid"
	}
	return ""
}

// ValidateField checks one signup field. While typing (submit false) an empty
// value is never an error; on submit empty values report a required message.
// password is the current password value, used for confirmation.
func ValidateField(field, value, password string, submit bool) string {
	if value == "" && !submit {
		return ""
	}
	v := signupValidator()

	switch field {
	case domain.FieldName:
		switch failedTag(v.Var(strings.TrimSpace(value), "min=2,max=50")) {
		case "min":
			return "Name must be at least 2 characters long"
		case "max":
			return "Name must be less than 50 characters"
		}
	case domain.FieldEmail:
		if value == "" {
			return "Email is required"
		}
		if failedTag(v.Var(value, "signup_email")) != "" {
			return "Please enter a valid email address"
		}
	case domain.FieldPassword:
		if value == "" {
			return "Password is required"
		}
		if failedTag(v.Var(strings.TrimSpace(value), "min=8")) != "" {
			return "Password must be at least 8 characters long"
		}
	case domain.FieldConfirmPassword:
		if value == "" {
			return "Please confirm your password"
		}
		if failedTag(v.VarWithValue(value, password, "eqcsfield")) != "" {
			return "Passwords do not match"
		}
	}
	return ""
}

// SignupForm tracks the signup form between keystrokes: values, which fields
// the user has touched, and the current errors.
type SignupForm struct {
	values  map[string]string
	touched map[string]bool
	errors  domain.ValidationErrors
}

// NewSignupForm returns an empty, untouched form.
func NewSignupForm() *SignupForm {
	return RestoreSignupForm(nil, nil)
}

// RestoreSignupForm rebuilds a form from a snapshot of values and touched
// flags, revalidating in keystroke mode.
func RestoreSignupForm(values map[string]string, touched map[string]bool) *SignupForm {
	f := &SignupForm{
		values:  make(map[string]string, len(domain.SignupFields)),
		touched: make(map[string]bool, len(domain.SignupFields)),
		errors:  domain.ValidationErrors{},
	}
	for _, field := range domain.SignupFields {
		f.values[field] = values[field]
		f.touched[field] = touched[field]
	}
	for _, field := range domain.SignupFields {
		f.revalidate(field, false)
	}
	return f
}

// Change records a keystroke. Editing the password rechecks the confirmation.
func (f *SignupForm) Change(field, value string) {
	if _, known := f.values[field]; !known {
		return
	}
	f.values[field] = value
	f.touched[field] = true
	f.revalidate(field, false)
	if field == domain.FieldPassword {
		f.revalidate(domain.FieldConfirmPassword, false)
	}
}

// Blur marks a field touched without changing it.
func (f *SignupForm) Blur(field string) {
	if _, known := f.values[field]; !known {
		return
	}
	f.touched[field] = true
}

func (f *SignupForm) Touched(field string) bool { return f.touched[field] }

func (f *SignupForm) Value(field string) string { return f.values[field] }

// Errors returns every current error, touched or not.
func (f *SignupForm) Errors() domain.ValidationErrors {
	out := make(domain.ValidationErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// VisibleErrors returns the errors the UI should render: touched fields only.
func (f *SignupForm) VisibleErrors() domain.ValidationErrors {
	out := domain.ValidationErrors{}
	for k, v := range f.errors {
		if f.touched[k] {
			out[k] = v
		}
	}
	return out
}

// SubmitResult is the outcome of pressing the submit button.
type SubmitResult struct {
	OK      bool                    `json:"ok"`
	Errors  domain.ValidationErrors `json:"errors"`
	Message string                  `json:"message,omitempty"`
}

// Submit touches every field and validates empty ones too. Submission is
// blocked by any field error or by an unaccepted privacy policy; the policy
// is reported as a form-level message, not a field error.
func (f *SignupForm) Submit(policyAccepted bool) SubmitResult {
	for _, field := range domain.SignupFields {
		f.touched[field] = true
		f.revalidate(field, true)
	}

	res := SubmitResult{Errors: f.Errors()}
	if !policyAccepted {
		res.Message = domain.MsgPolicyRequired
	}
	res.OK = !res.Errors.HasErrors() && policyAccepted
	return res
}

// Credentials returns the signup payload held by the form.
func (f *SignupForm) Credentials() domain.SignupCredentials {
	return domain.SignupCredentials{
		Name:     f.values[domain.FieldName],
		Email:    f.values[domain.FieldEmail],
		Password: f.values[domain.FieldPassword],
	}
}

func (f *SignupForm) revalidate(field string, submit bool) {
	msg := ValidateField(field, f.values[field], f.values[domain.FieldPassword], submit)
	if msg == "" {
		delete(f.errors, field)
		return
	}
	f.errors[field] = msg
}
