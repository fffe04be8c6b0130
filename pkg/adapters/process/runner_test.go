package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh")
	}
}

func TestRunner_Execute(t *testing.T) {
	requireShell(t)
	r := NewRunner()
	r.Register("hello", "sh", "-c", "echo hello")
	r.Register("echo_env", "sh", "-c", "echo $PARLANCE_ARG_MSG")
	r.Register("echo_stdin", "sh", "-c", "cat")
	r.Register("fail", "sh", "-c", "echo broken >&2; exit 3")

	ctx := context.Background()

	t.Run("Executes Registered Command", func(t *testing.T) {
		res, err := r.Execute(ctx, "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", res)
	})

	t.Run("Passes Arguments via Env Vars", func(t *testing.T) {
		res, err := r.Execute(ctx, "echo_env", map[string]any{"msg": "SecretMessage"})
		require.NoError(t, err)
		assert.Equal(t, "SecretMessage", res)
	})

	t.Run("Passes Params via Stdin and Parses JSON", func(t *testing.T) {
		res, err := r.Execute(ctx, "echo_stdin", map[string]any{"n": 2.0})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"n": 2.0}, res)
	})

	t.Run("Reports Stderr On Failure", func(t *testing.T) {
		_, err := r.Execute(ctx, "fail", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := r.Execute(ctx, "hacker_script", nil)
		assert.ErrorContains(t, err, "not registered")
	})
}

func TestRunner_RegisterActions(t *testing.T) {
	requireShell(t)
	r := NewRunner(WithRegistry(map[string]ProcessConfig{
		"greet": {Command: "sh", Args: []string{"-c", "echo hi $NAME"}, Environment: map[string]string{"NAME": "there"}},
	}))
	reg := registry.New()
	r.RegisterActions(reg)

	res, err := reg.Dispatch(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", res)

	reg.RegisterFunc("noop", func(context.Context, map[string]any) (any, error) { return nil, nil })
	assert.Equal(t, []string{"greet", "noop"}, reg.Names())
}

func TestRunner_BaseDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("here"), 0o644))

	r := NewRunner(WithBaseDir(dir))
	r.Register("read", "sh", "-c", "cat marker.txt")

	res, err := r.Execute(context.Background(), "read", nil)
	require.NoError(t, err)
	assert.Equal(t, "here", res)
}

func TestRunner_FailureIsDispatchError(t *testing.T) {
	requireShell(t)
	r := NewRunner()
	r.Register("fail", "sh", "-c", "exit 1")
	reg := registry.New()
	r.RegisterActions(reg)

	_, err := reg.Dispatch(context.Background(), "fail", nil)
	assert.ErrorIs(t, err, domain.ErrActionDispatch)
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()

	tools, err := LoadTools(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tools)

	yamlPath := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
tools:
  - name: weather
    command: ./weather.sh
    args: ["--metric"]
    description: Current weather
  - name: nameless-is-skipped
  - command: also-skipped
`), 0o644))
	tools, err = LoadTools(yamlPath)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, []string{"--metric"}, tools["weather"].Args)

	jsonPath := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"tools":[{"name":"ls","command":"ls"}]}`), 0o644))
	tools, err = LoadTools(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "ls", tools["ls"].Command)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{`), 0o644))
	_, err = LoadTools(badPath)
	assert.Error(t, err)
}

func TestEnvValue(t *testing.T) {
	assert.Equal(t, "", envValue(nil))
	assert.Equal(t, "x", envValue("x"))
	assert.Equal(t, "2.5", envValue(2.5))
	assert.Equal(t, "true", envValue(true))
	assert.Equal(t, `{"a":1}`, envValue(map[string]any{"a": 1}))
}
