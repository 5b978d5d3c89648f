package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "oshiete", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	verboseFlag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag, "verbose flag should exist")
	assert.Equal(t, "v", verboseFlag.Shorthand)

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "ingest")
	assert.Contains(t, names, "ask")
	assert.Contains(t, names, "batch")
	assert.Contains(t, names, "evaluate")
	assert.Contains(t, names, "db")
	assert.Contains(t, names, "models")
	assert.Contains(t, names, "doctor")
	assert.Contains(t, names, "version")
}
