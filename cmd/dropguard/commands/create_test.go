package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	cmd := Create()

	require.NotNil(t, cmd)
	assert.Equal(t, "create", cmd.Use)
	assert.Equal(t, "Create a droplet and set it up as a WireGuard gateway", cmd.Short)
	assert.NotNil(t, cmd.RunE, "Create command should have RunE function")
}

func TestCreate_Flags(t *testing.T) {
	cmd := Create()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "name", shorthand: "n", defValue: ""},
		{name: "ssh-keys", shorthand: "k", defValue: "[]"},
		{name: "private-key", shorthand: "", defValue: ""},
		{name: "region", shorthand: "r", defValue: ""},
		{name: "size", shorthand: "s", defValue: ""},
		{name: "image", shorthand: "", defValue: ""},
		{name: "port", shorthand: "p", defValue: ""},
		{name: "output", shorthand: "o", defValue: ""},
		{name: "user-data", shorthand: "", defValue: ""},
		{name: "timeout", shorthand: "", defValue: "0s"},
	}

	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		require.NotNil(t, flag, "%s flag should exist", tt.name)
		assert.Equal(t, tt.shorthand, flag.Shorthand, "%s shorthand", tt.name)
		assert.Equal(t, tt.defValue, flag.DefValue, "%s default", tt.name)
	}
}

func TestCreate_RequiredFlags(t *testing.T) {
	cmd := Create()

	for _, name := range []string{"name", "ssh-keys"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag)

		_, hasRequired := flag.Annotations["cobra_annotation_bash_completion_one_required_flag"]
		assert.True(t, hasRequired, "%s flag should be required", name)
	}
}

func TestCreate_PrivateKeyNotRequired(t *testing.T) {
	cmd := Create()

	// The private key can come from the config file instead of the flag,
	// so the command cannot enforce it.
	flag := cmd.Flags().Lookup("private-key")
	require.NotNil(t, flag)

	_, hasRequired := flag.Annotations["cobra_annotation_bash_completion_one_required_flag"]
	assert.False(t, hasRequired)
}
