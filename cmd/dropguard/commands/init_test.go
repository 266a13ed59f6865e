package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	cmd := Init()

	require.NotNil(t, cmd)
	assert.Equal(t, "init", cmd.Use)
	assert.Equal(t, "Interactively create a dropguard configuration", cmd.Short)
	assert.Contains(t, cmd.Long, "Interactively create a dropguard configuration file")
	assert.NotNil(t, cmd.RunE, "Init command should have RunE function")
}

func TestInit_OutputFlag(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag, "output flag should exist")
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "dropguard.yaml", flag.DefValue)
	assert.Equal(t, "Output file path", flag.Usage)
}
