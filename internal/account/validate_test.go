// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegisterInput(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		valid, fields := ValidateRegisterInput("alice", "alice@prisma.io", "password123", "password123")
		assert.True(t, valid)
		assert.Empty(t, fields)
	})

	t.Run("collects all violations at once", func(t *testing.T) {
		valid, fields := ValidateRegisterInput("", "", "", "")
		require.False(t, valid)
		assert.Equal(t, []FieldError{
			{Field: "username", Message: "Username must not be empty"},
			{Field: "email", Message: "Email must not be empty"},
			{Field: "password", Message: "Password must not be empty"},
		}, fields)
	})

	t.Run("invalid email shape", func(t *testing.T) {
		valid, fields := ValidateRegisterInput("alice", "not-an-email", "password123", "password123")
		require.False(t, valid)
		assert.Equal(t, []FieldError{
			{Field: "email", Message: "Email must be a valid email address"},
		}, fields)
	})

	t.Run("password mismatch", func(t *testing.T) {
		valid, fields := ValidateRegisterInput("alice", "alice@prisma.io", "password123", "different")
		require.False(t, valid)
		assert.Equal(t, []FieldError{
			{Field: "confirmPassword", Message: "Passwords must match"},
		}, fields)
	})

	t.Run("empty password suppresses mismatch check", func(t *testing.T) {
		valid, fields := ValidateRegisterInput("alice", "alice@prisma.io", "", "something")
		require.False(t, valid)
		assert.Equal(t, []FieldError{
			{Field: "password", Message: "Password must not be empty"},
		}, fields)
	})

	t.Run("email shapes", func(t *testing.T) {
		tests := []struct {
			email string
			valid bool
		}{
			{"alice@prisma.io", true},
			{"a@bc.co", true},
			{"a@b.co", false}, // domain labels need at least two characters
			{"first.last@example.com", true},
			{"first-last@sub.example.org", true},
			{"user_name@example.museum", true},
			{"@example.com", false},
			{"alice@", false},
			{"alice", false},
			{"alice@example", false},
			{"alice@example.", false},
			{"alice@example.x", false},       // TLD below 2 chars
			{"alice@example.abcdefghij", false}, // TLD above 9 chars
			{"alice@@example.com", false},
			{"alice example@example.com", false},
		}

		for _, tt := range tests {
			valid, _ := ValidateRegisterInput("alice", tt.email, "password123", "password123")
			assert.Equal(t, tt.valid, valid, "email %q", tt.email)
		}
	})
}

func TestValidateLoginInput(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		valid, fields := ValidateLoginInput("alice", "password123")
		assert.True(t, valid)
		assert.Empty(t, fields)
	})

	t.Run("collects all violations at once", func(t *testing.T) {
		valid, fields := ValidateLoginInput("", "")
		require.False(t, valid)
		assert.Equal(t, []FieldError{
			{Field: "username", Message: "Username must not be empty"},
			{Field: "password", Message: "Password must not be empty"},
		}, fields)
	})

	t.Run("password is not shape-checked at login", func(t *testing.T) {
		valid, fields := ValidateLoginInput("alice", "x")
		assert.True(t, valid)
		assert.Empty(t, fields)
	})
}
