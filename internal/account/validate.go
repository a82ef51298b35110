// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package account

import "regexp"

// emailRegex matches the address shape the registration form accepts.
var emailRegex = regexp.MustCompile(`^([0-9a-zA-Z]([-.\w]*[0-9a-zA-Z])*@([0-9a-zA-Z][-\w]*[0-9a-zA-Z]\.)+[a-zA-Z]{2,9})$`)

// ValidateRegisterInput checks registration fields and returns a validity
// flag plus the full list of violations, one message per field. It collects
// every failing field rather than stopping at the first, so callers can
// surface all form errors at once. Performs no I/O.
func ValidateRegisterInput(username, email, password, confirmPassword string) (bool, []FieldError) {
	var fields []FieldError

	if username == "" {
		fields = append(fields, FieldError{Field: "username", Message: "Username must not be empty"})
	}

	if email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "Email must not be empty"})
	} else if !emailRegex.MatchString(email) {
		fields = append(fields, FieldError{Field: "email", Message: "Email must be a valid email address"})
	}

	if password == "" {
		fields = append(fields, FieldError{Field: "password", Message: "Password must not be empty"})
	} else if password != confirmPassword {
		fields = append(fields, FieldError{Field: "confirmPassword", Message: "Passwords must match"})
	}

	return len(fields) == 0, fields
}

// ValidateLoginInput checks login fields for presence only.
func ValidateLoginInput(username, password string) (bool, []FieldError) {
	var fields []FieldError

	if username == "" {
		fields = append(fields, FieldError{Field: "username", Message: "Username must not be empty"})
	}
	if password == "" {
		fields = append(fields, FieldError{Field: "password", Message: "Password must not be empty"})
	}

	return len(fields) == 0, fields
}
