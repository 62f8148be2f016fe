package domain

// StrengthCategory labels a password score.
type StrengthCategory string

const (
	StrengthVeryWeak   StrengthCategory = "Very Weak"
	StrengthWeak       StrengthCategory = "Weak"
	StrengthFair       StrengthCategory = "Fair"
	StrengthGood       StrengthCategory = "Good"
	StrengthStrong     StrengthCategory = "Strong"
	StrengthVeryStrong StrengthCategory = "Very Strong"
)

// Password criteria, in the order feedback is reported.
const (
	CriterionLength    = "At least 8 characters"
	CriterionLowercase = "One lowercase letter"
	CriterionUppercase = "One uppercase letter"
	CriterionDigit     = "One number"
	CriterionSpecial   = "One special character"
)

// PasswordStrength is the live feedback shown under the password field.
type PasswordStrength struct {
	Score           int              `json:"score" yaml:"score"`
	MissingCriteria []string         `json:"missing_criteria" yaml:"missing_criteria"`
	Category        StrengthCategory `json:"category" yaml:"category"`
}

// Signup form fields.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// SignupFields lists the form fields in display order.
var SignupFields = []string{FieldName, FieldEmail, FieldPassword, FieldConfirmPassword}

// ValidationErrors maps a field to its message. A missing key means no error.
type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool { return len(v) > 0 }
