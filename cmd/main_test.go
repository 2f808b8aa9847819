package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDSNFor(t *testing.T) {
	name, admin, err := adminDSNFor("postgres://u:p@localhost:5432/events?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "events", name)
	assert.Equal(t, "postgres://u:p@localhost:5432/postgres?sslmode=disable", admin)

	name, _, err = adminDSNFor("postgres://u:p@localhost:5432/postgres")
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["scrape"])
	assert.True(t, names["migrate"])
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, "debug", newLogger("debug").GetLevel().String())
	assert.Equal(t, "info", newLogger("bogus").GetLevel().String())
}
