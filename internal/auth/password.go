package auth

import (
	"strings"
	"unicode"
)

const MinPasswordLength = 8

// A short list of passwords rejected outright. Lowercased before lookup.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"letmein1":    {},
	"welcome1":    {},
	"admin123":    {},
	"abc12345":    {},
	"sunshine":    {},
	"football":    {},
	"baseball":    {},
	"superman":    {},
	"trustno1":    {},
	"monkey123":   {},
	"dragon123":   {},
}

// ValidatePassword applies the platform password policy: minimum length,
// common-password rejection, similarity to the username, and not entirely
// numeric. Returns one message per failed check.
func ValidatePassword(password, username string) []string {
	var errs []string

	if len(password) < MinPasswordLength {
		errs = append(errs, "This password is too short. It must contain at least 8 characters.")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		errs = append(errs, "This password is too common.")
	}

	if tooSimilar(password, username) {
		errs = append(errs, "The password is too similar to the username.")
	}

	if password != "" && allDigits(password) {
		errs = append(errs, "This password is entirely numeric.")
	}

	return errs
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar reports whether the password contains the username (or the
// reverse) ignoring case. Usernames shorter than 4 runes are skipped so a
// short handle like "ed" cannot poison every password.
func tooSimilar(password, username string) bool {
	if len(username) < 4 {
		return false
	}
	p := strings.ToLower(password)
	u := strings.ToLower(username)
	return strings.Contains(p, u) || strings.Contains(u, p)
}
