package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitWritesProjectTemplate(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())

	out, err := runCommand(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".caselens.yaml")

	data, err := os.ReadFile(".caselens.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "lexical_weight")

	// A second init must refuse to overwrite.
	_, err = runCommand(t, "config", "init")
	assert.Error(t, err)
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CASELENS_TOP_K", "9")

	out, err := runCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "top_k: 9")
	assert.Contains(t, out, "semantic_weight")
}
