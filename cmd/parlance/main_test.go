package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "parlance version ")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.toml")
	require.NoError(t, os.WriteFile(valid, []byte(`
[states.start]
prompt = "Hi."
transitions = ["end"]

[states.error]
prompt = "Recover."
`), 0o644))

	out, err := execute(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (2 states)")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte(`
[states.start]
prompt = "Hi."
transitions = ["nowhere"]
`), 0o644))

	_, err = execute(t, "validate", "--config", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
