package parlance_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/parlance"
	"github.com/aretw0/parlance/internal/testutils"
	"github.com/aretw0/parlance/pkg/actions"
	"github.com/aretw0/parlance/pkg/adapters/memory"
	"github.com/aretw0/parlance/pkg/adapters/scripted"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/dsl"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agentConfig = `
initial_state = "start"

[description]
role = "You are a helpful math assistant."

[states.start]
prompt = "Greet the user and ask for a calculation."
transitions = ["calculate", "end"]

[states.calculate]
prompt = "Use the calculate action."
transitions = ["start", "end"]

[states.error]
prompt = "Recover from the error."
`

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent_config.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestAgent_RunEndToEnd(t *testing.T) {
	client := scripted.New([]string{
		testutils.Reply(map[string]any{"message": "Hi! What should I compute?", "next_state": "calculate", "require_input": true}),
		testutils.Reply(map[string]any{"message": "Computing.", "action": "calculate", "action_params": map[string]any{"expression": "6 * 7"}, "next_state": "start", "require_input": false}),
		testutils.Reply(map[string]any{"message": "The answer is 42. Bye!", "next_state": "end"}),
	})

	out := &bytes.Buffer{}
	auditLog := &bytes.Buffer{}
	agent, err := parlance.New(writeConfig(t, agentConfig), client,
		parlance.WithIO(runner.NewTextHandler(strings.NewReader("what is 6 times 7?\n"), out)),
		parlance.WithAuditWriter(auditLog),
	)
	require.NoError(t, err)
	agent.RegisterAction(actions.CalculatorAction, actions.NewCalculator())

	outcome, err := agent.Run(context.Background(), "Hello, I need some help.")
	require.NoError(t, err)
	assert.Equal(t, parlance.ReasonTerminal, outcome.Reason)
	assert.Equal(t, 3, outcome.Iterations)

	assert.Contains(t, out.String(), "Agent: Hi! What should I compute?")
	assert.Contains(t, out.String(), "Agent: The answer is 42. Bye!")

	reqs := client.Requests()
	require.Len(t, reqs, 3)
	last := reqs[2].Messages
	assert.Equal(t, domain.RoleSystem, last[len(last)-1].Role)
	assert.Equal(t, "Action result: Result: 42", last[len(last)-1].Content)
	assert.Equal(t, "Hello, I need some help.", reqs[0].Messages[1].Content)

	assert.Contains(t, auditLog.String(), "SYSTEM PROMPT")
}

func TestAgent_StrictConfig(t *testing.T) {
	doc := `
[states.start]
prompt = "Only state."
`
	_, err := parlance.New(writeConfig(t, doc), scripted.New(nil), parlance.WithStrictConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)

	agent, err := parlance.New(writeConfig(t, doc), scripted.New(nil))
	require.NoError(t, err, "validation problems are warnings by default")
	assert.NotNil(t, agent.Config())
}

func TestAgent_LoadFailure(t *testing.T) {
	_, err := parlance.New(filepath.Join(t.TempDir(), "missing.toml"), scripted.New(nil))
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestAgent_ResumeFromStore(t *testing.T) {
	store := memory.NewStore()
	path := writeConfig(t, agentConfig)

	first := scripted.New([]string{
		testutils.Reply(map[string]any{"message": "What should I compute?", "next_state": "calculate"}),
	})
	agent, err := parlance.New(path, first,
		parlance.WithIO(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})),
		parlance.WithStore(store),
		parlance.WithSessionID("s-1"),
	)
	require.NoError(t, err)
	outcome, err := agent.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, parlance.ReasonInputClosed, outcome.Reason)

	snap, err := store.Load(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "calculate", snap.CurrentState)
	assert.Equal(t, domain.StatusWaitingInput, snap.Status)

	second := scripted.New([]string{
		testutils.Reply(map[string]any{"message": "Bye", "next_state": "end"}),
	})
	out := &bytes.Buffer{}
	agent, err = parlance.New(path, second,
		parlance.WithIO(runner.NewTextHandler(strings.NewReader("2+2\n"), out)),
		parlance.WithStore(store),
		parlance.WithSessionID("s-1"),
	)
	require.NoError(t, err)
	outcome, err = agent.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, parlance.ReasonTerminal, outcome.Reason)

	reqs := second.Requests()
	require.Len(t, reqs, 1)
	msgs := reqs[0].Messages
	assert.Equal(t, "2+2", msgs[len(msgs)-1].Content, "the resumed session reads input before calling the model")
	assert.Contains(t, reqs[0].Messages[0].Content, "CURRENT STATE: calculate")

	_, err = agent.Run(context.Background(), "")
	assert.ErrorIs(t, err, parlance.ErrSessionClosed)
}

func TestAgent_AuditDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	client := scripted.New([]string{testutils.Reply(map[string]any{"message": "Bye", "next_state": ""})})
	agent, err := parlance.New(writeConfig(t, agentConfig), client,
		parlance.WithIO(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})),
		parlance.WithAuditDir(dir),
	)
	require.NoError(t, err)

	_, err = agent.Run(context.Background(), "")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "agent_log_"))
}

type fakeLocker struct {
	locked   []string
	released int
}

func (l *fakeLocker) Lock(_ context.Context, sessionID string, _ time.Duration) (ports.UnlockFunc, error) {
	l.locked = append(l.locked, sessionID)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestAgent_LocksSessionForRun(t *testing.T) {
	locker := &fakeLocker{}
	client := scripted.New([]string{testutils.Reply(map[string]any{"message": "Bye", "next_state": "exit"})})
	agent, err := parlance.New(writeConfig(t, agentConfig), client,
		parlance.WithIO(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})),
		parlance.WithLocker(locker, 0),
		parlance.WithSessionID("locked-1"),
	)
	require.NoError(t, err)

	outcome, err := agent.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "locked-1", outcome.SessionID)
	assert.Equal(t, []string{"locked-1"}, locker.locked)
	assert.Equal(t, 1, locker.released)
}

func TestAgent_NewFromBuiltConfig(t *testing.T) {
	cfg, err := dsl.New().
		Add("start").Prompt("Say hello and finish.").Go("exit").
		Add("error").Prompt("Recover.").
		Build()
	require.NoError(t, err)

	client := scripted.New([]string{
		testutils.Reply(map[string]any{"message": "Hello!", "next_state": "exit"}),
	})
	out := &bytes.Buffer{}
	agent, err := parlance.NewFromConfig(cfg, client,
		parlance.WithIO(runner.NewTextHandler(strings.NewReader(""), out)),
		parlance.WithStrictConfig(),
	)
	require.NoError(t, err)

	outcome, err := agent.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, parlance.ReasonTerminal, outcome.Reason)
	assert.Equal(t, "error", outcome.FinalState)
	assert.Equal(t, "Agent: Hello!\nError: Invalid transition from 'start' to 'exit'\n", out.String())
}
