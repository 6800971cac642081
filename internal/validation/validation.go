// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
)

var (
	emailRe = regexp.MustCompile(`.+@.+\..+`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

// ValidateName checks the display name supplied at signup.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("Name is required")
	}
	if len(name) < 4 || len(name) > 150 {
		return fmt.Errorf("Name must be between 4 to 150 characters")
	}
	return nil
}

// ValidateEmail checks basic shape and length of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("Email is required")
	}
	if len(email) < 3 || len(email) > 32 {
		return fmt.Errorf("Email must be between 3 to 32 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("Email must contain @")
	}
	return nil
}

// ValidatePassword checks if a password meets requirements: at least six
// characters, at least one digit.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("Password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("Password must contain at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("Password must not exceed 128 characters")
	}
	if !digitRe.MatchString(password) {
		return fmt.Errorf("Password must contain a number")
	}
	return nil
}
