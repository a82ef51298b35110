// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUserCommand_Properties(t *testing.T) {
	cmd := NewAddUserCmd()

	assert.Equal(t, "adduser", cmd.Use)
	assert.Contains(t, cmd.Short, "user", "Short description should mention user")
	assert.Contains(t, cmd.Long, "idempotent", "Long description should mention idempotency")
}

func TestAddUserCommand_RequiresFlags(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"adduser"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error when required flags are missing")
}

func TestAddUserCommand_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "invalid email",
			args: []string{
				"adduser",
				"--database-url", "postgres://localhost/quillboard",
				"--username", "alice",
				"--email", "not-an-email",
				"--password", "password123",
			},
		},
		{
			name: "empty password",
			args: []string{
				"adduser",
				"--database-url", "postgres://localhost/quillboard",
				"--username", "alice",
				"--email", "alice@prisma.io",
				"--password", "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			errBuf := new(bytes.Buffer)
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(errBuf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err, "Expected validation error")
			assert.Contains(t, err.Error(), "invalid account details")
		})
	}
}

func TestAddUserCommand_NoDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{
		"adduser",
		"--username", "alice",
		"--email", "alice@prisma.io",
		"--password", "password123",
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database-url")
}
