package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
initial_state = "greeting"

[description]
role = "You are a helpful research assistant."
state_machine_logic = "Answer with JSON."
work_principles = "Be concise."

[states.greeting]
prompt = "Greet the user."
temperature = 0.2
model = "openai/gpt-4o-mini"
transitions = ["research", "exit"]

[states.research]
prompt = "Research the question."
temperature = 1

[states.error]
prompt = "Recover from the error."
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "agent.toml", sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "greeting", cfg.InitialState)
	assert.Equal(t, "You are a helpful research assistant.", cfg.Persona.Role)
	assert.Equal(t, "Answer with JSON.", cfg.Persona.StateMachineLogic)
	assert.Equal(t, "Be concise.", cfg.Persona.WorkPrinciples)
	assert.Equal(t, domain.DefaultSideChannelAction, cfg.SideChannelAction)
	assert.Equal(t, domain.DefaultTerminalStates, cfg.TerminalStates)

	greeting, ok := cfg.State("greeting")
	require.True(t, ok)
	assert.Equal(t, 0.2, greeting.Temperature)
	assert.Equal(t, "openai/gpt-4o-mini", greeting.Model)
	assert.Equal(t, []string{"research", "exit"}, greeting.AllowedTransitions)

	research, ok := cfg.State("research")
	require.True(t, ok)
	assert.Equal(t, 1.0, research.Temperature, "integer temperature must decode as float")
	assert.Equal(t, domain.DefaultModel, research.Model)
	assert.Empty(t, research.AllowedTransitions)

	errState, ok := cfg.State("error")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultTemperature, errState.Temperature)
}

func TestLoad_ExplicitZeroTemperatureIsKept(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[states.start]
prompt = "p"
temperature = 0.0
`), config.FormatTOML)
	require.NoError(t, err)

	spec, _ := cfg.State("start")
	assert.Equal(t, 0.0, spec.Temperature)
	assert.Equal(t, domain.DefaultInitialState, cfg.InitialState)
}

func TestLoad_YAMLAndJSON(t *testing.T) {
	yamlDoc := `
initial_state: start
side_channel_action: lookup
terminal_states: [done]
states:
  start:
    prompt: "Start here"
    transitions: [done]
`
	jsonDoc := `{
  "initial_state": "start",
  "side_channel_action": "lookup",
  "terminal_states": ["done"],
  "states": {"start": {"prompt": "Start here", "transitions": ["done"]}}
}`

	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "yaml", file: "agent.yaml", body: yamlDoc},
		{name: "yml", file: "agent.yml", body: yamlDoc},
		{name: "json", file: "agent.json", body: jsonDoc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)

			assert.Equal(t, "start", cfg.InitialState)
			assert.Equal(t, "lookup", cfg.SideChannelAction)
			assert.Equal(t, []string{"done"}, cfg.TerminalStates)
			assert.True(t, cfg.IsTerminal("done"))
			assert.False(t, cfg.IsTerminal("exit"))

			spec, ok := cfg.State("start")
			require.True(t, ok)
			assert.Equal(t, "Start here", spec.Prompt)
			assert.Equal(t, domain.DefaultTemperature, spec.Temperature)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.toml")
		_, err := config.Load(path)
		require.Error(t, err)

		var cerr *domain.ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, path, cerr.Path)
		assert.ErrorIs(t, err, domain.ErrConfig)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unparsable toml", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "initial_state = \n[[[")
		_, err := config.Load(path)

		var cerr *domain.ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, path, cerr.Path)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := config.Parse([]byte(`{"states": "oops"}`), config.FormatJSON)
		assert.ErrorIs(t, err, domain.ErrConfig)
	})
}

func TestLoad_IsPermissive(t *testing.T) {
	// Dangling references are a runtime concern, not a load failure.
	cfg, err := config.Parse([]byte(`
initial_state = "missing"
[states.only]
prompt = "p"
transitions = ["ghost"]
`), config.FormatTOML)
	require.NoError(t, err)
	assert.False(t, cfg.HasState("missing"))
}

func TestStateSpec_Allows(t *testing.T) {
	unrestricted := config.StateSpec{}
	assert.True(t, unrestricted.Allows("anything"))

	restricted := config.StateSpec{AllowedTransitions: []string{"middle"}}
	assert.True(t, restricted.Allows("middle"))
	assert.False(t, restricted.Allows("end"))
}

func TestConfig_IsTerminal(t *testing.T) {
	cfg := &config.Config{TerminalStates: domain.DefaultTerminalStates}
	assert.True(t, cfg.IsTerminal(""))
	assert.True(t, cfg.IsTerminal("exit"))
	assert.True(t, cfg.IsTerminal("end"))
	assert.False(t, cfg.IsTerminal("error"))
}

func TestLoad_BundledExample(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "examples", "agent_config.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "start", cfg.InitialState)
	assert.Equal(t, []string{"calculate", "error", "research", "start"}, cfg.StateIDs())

	calc, ok := cfg.State("calculate")
	require.True(t, ok)
	assert.Equal(t, 0.0, calc.Temperature)
	assert.NotEmpty(t, cfg.Persona.StateMachineLogic)
}
