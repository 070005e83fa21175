// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "create-admin", "deactivate-user"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "config flag with space",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "config flag with equals",
			args:     []string{"--config=/etc/taskvault.yaml", "--help"},
			wantFlag: "/etc/taskvault.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	configFile = ""
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}

func TestRootCommand_NoArgs(t *testing.T) {
	_, err := execute(t)
	require.NoError(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "nonexistent")
	require.Error(t, err)
}

func TestMigrateCommand_NoDatabaseURL(t *testing.T) {
	t.Setenv("TASKVAULT_DATABASE_URL", "")

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestMigrateCommand_InvalidDatabaseURL(t *testing.T) {
	t.Setenv("TASKVAULT_DATABASE_URL", "invalid://not-a-real-db")

	_, err := execute(t, "migrate")
	require.Error(t, err)
}

func TestServeCommand_RequiresJWTSecret(t *testing.T) {
	t.Setenv("TASKVAULT_DATABASE_URL", "postgres://localhost:5432/taskvault")
	t.Setenv("TASKVAULT_JWT_SECRET", "")

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is required")
}

func TestCreateAdminCommand_RequiresFlags(t *testing.T) {
	t.Setenv("TASKVAULT_DATABASE_URL", "postgres://localhost:5432/taskvault")
	t.Setenv("TASKVAULT_JWT_SECRET", "test-secret")

	_, err := execute(t, "create-admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestDeactivateUserCommand_RequiresEmail(t *testing.T) {
	t.Setenv("TASKVAULT_DATABASE_URL", "postgres://localhost:5432/taskvault")
	t.Setenv("TASKVAULT_JWT_SECRET", "test-secret")

	_, err := execute(t, "deactivate-user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
