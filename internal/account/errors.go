// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package account

import (
	"errors"
	"strings"
)

// Repository-level sentinels.
var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned by UserRepository.Create when the
	// store's unique constraint on username is violated.
	ErrUsernameTaken = errors.New("username taken")
)

// FlowKind discriminates expected credential-flow failures.
type FlowKind string

// Flow failure kinds.
const (
	KindValidation         FlowKind = "VALIDATION"
	KindDuplicateUsername  FlowKind = "DUPLICATE_USERNAME"
	KindNotFound           FlowKind = "NOT_FOUND"
	KindInvalidCredentials FlowKind = "INVALID_CREDENTIALS"
)

// FieldError is a single field→message pair.
type FieldError struct {
	Field   string
	Message string
}

// FlowError is an expected failure of the register/login flow: a kind plus
// an ordered field→message list suitable for display next to form fields.
// Infrastructure failures (store unavailable, signing failure) are never
// FlowErrors; they propagate as oops-wrapped errors.
type FlowError struct {
	Kind   FlowKind
	Fields []FieldError
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	return b.String()
}

// FieldMap returns the fields as a map for JSON rendering.
func (e *FlowError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

// AsFlowError unwraps err into a *FlowError if it is one.
func AsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// NewValidationError builds a FlowError from validator output.
func NewValidationError(fields []FieldError) *FlowError {
	return &FlowError{Kind: KindValidation, Fields: fields}
}

// NewDuplicateUsernameError reports a username collision at registration.
func NewDuplicateUsernameError() *FlowError {
	return &FlowError{
		Kind:   KindDuplicateUsername,
		Fields: []FieldError{{Field: "username", Message: "This username is taken"}},
	}
}

// NewUserNotFoundError reports a login attempt for an unknown username.
func NewUserNotFoundError() *FlowError {
	return &FlowError{
		Kind:   KindNotFound,
		Fields: []FieldError{{Field: "general", Message: "User not found"}},
	}
}

// NewInvalidCredentialsError reports a password mismatch at login.
func NewInvalidCredentialsError() *FlowError {
	return &FlowError{
		Kind:   KindInvalidCredentials,
		Fields: []FieldError{{Field: "general", Message: "Wrong credentials"}},
	}
}
