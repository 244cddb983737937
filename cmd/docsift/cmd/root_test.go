package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: the root command
	rootCmd := NewRootCmd()

	// Then: every surface command is registered
	for _, name := range []string{"populate", "search", "watch", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, "subcommand %s should exist", name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	rootCmd := NewRootCmd()

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
