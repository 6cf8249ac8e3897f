package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := GetRootCmd()

	assert.Equal(t, "recalld", root.Use)
	assert.Equal(t, version, root.Version)
	assert.NotEmpty(t, GetVersion())
}

func TestSubcommandsRegistered(t *testing.T) {
	root := GetRootCmd()

	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	require.True(t, names["serve"])
	require.True(t, names["status"])
}

func TestGlobalFlags(t *testing.T) {
	root := GetRootCmd()

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}
