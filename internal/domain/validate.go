package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+$`)

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a client
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Validate checks the client fields. It returns *ValidationError or nil.
func Validate(c Client) error {
	verr := &ValidationError{}

	checkName(verr, "surname", c.Surname, true)
	checkName(verr, "firstname", c.Firstname, true)
	checkName(verr, "fathers_name", c.FathersName, false)

	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		verr.add("email", "malformed address")
	}
	if c.Balance != nil && *c.Balance < 0 {
		verr.add("balance", "must not be negative")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func checkName(verr *ValidationError, field, value string, required bool) {
	if strings.TrimSpace(value) == "" {
		if required {
			verr.add(field, "must not be empty")
		}
		return
	}
	if strings.IndexFunc(value, unicode.IsDigit) >= 0 {
		verr.add(field, "must not contain digits")
	}
}
