// Package validate provides functions to validate service request submissions.
package validate

import (
	"errors"
	"strings"
)

// Field is a named form value checked for presence.
type Field struct {
	Name  string
	Value string
}

// Missing returns the names of fields whose value is empty after trimming, in order.
func Missing(fields ...Field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Credentials checks that a username and password were both supplied.
func Credentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.New("Username and password are required.")
	}
	return nil
}

// Signup checks that every registration field was supplied.
func Signup(username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return errors.New("All fields are required")
	}
	return nil
}
