package auth

import (
	"regexp"
	"unicode"
)

// phonePattern accepts Nepali mobile numbers in international form, the
// country code followed by exactly ten digits.
var phonePattern = regexp.MustCompile(`^\+977\d{10}$`)

func validPhone(phoneNumber string) bool {
	return phonePattern.MatchString(phoneNumber)
}

// validPassword requires at least eight characters with at least one digit.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	for _, r := range password {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
