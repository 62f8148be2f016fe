package service

import (
	"unicode/utf8"

	"github.com/talentloop/portal/internal/core/domain"
)

const (
	minPasswordLength   = 8
	bonusSpecialCharMin = 3
)

var allCriteria = []string{
	domain.CriterionLength,
	domain.CriterionLowercase,
	domain.CriterionUppercase,
	domain.CriterionDigit,
	domain.CriterionSpecial,
}

// EvaluatePassword scores a candidate password for the strength meter.
//
// A single character scores 0 with every criterion reported missing, whatever
// the character is. Product has been asked to review this.
func EvaluatePassword(password string) domain.PasswordStrength {
	if password == "" {
		return domain.PasswordStrength{Score: 0, MissingCriteria: []string{}, Category: domain.StrengthVeryWeak}
	}
	if utf8.RuneCountInString(password) == 1 {
		missing := make([]string, len(allCriteria))
		copy(missing, allCriteria)
		return domain.PasswordStrength{Score: 0, MissingCriteria: missing, Category: domain.StrengthVeryWeak}
	}

	var lower, upper, digit bool
	specials := 0
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			specials++
		}
	}

	met := []bool{
		utf8.RuneCountInString(password) >= minPasswordLength,
		lower,
		upper,
		digit,
		specials > 0,
	}

	score := 0
	missing := make([]string, 0, len(allCriteria))
	for i, ok := range met {
		if ok {
			score++
			continue
		}
		missing = append(missing, allCriteria[i])
	}
	if specials >= bonusSpecialCharMin {
		score++
	}

	return domain.PasswordStrength{Score: score, MissingCriteria: missing, Category: strengthCategory(score)}
}

func strengthCategory(score int) domain.StrengthCategory {
	switch {
	case score <= 0:
		return domain.StrengthVeryWeak
	case score == 1:
		return domain.StrengthWeak
	case score == 2:
		return domain.StrengthFair
	case score <= 4:
		return domain.StrengthGood
	case score == 5:
		return domain.StrengthStrong
	default:
		return domain.StrengthVeryStrong
	}
}
