// Package testutils holds fakes shared by engine and facade tests.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/stretchr/testify/require"
)

// ParseConfig parses a TOML document and fails the test on error.
func ParseConfig(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc), config.FormatTOML)
	require.NoError(t, err, "Failed to parse test configuration")
	return cfg
}

// Reply encodes a decision object as the model would return it.
func Reply(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// ScriptedClient returns its replies in order and records every request.
// Once the script is exhausted it keeps returning the last reply.
type ScriptedClient struct {
	mu       sync.Mutex
	replies  []string
	requests []model.Request
}

// NewScriptedClient creates a client replaying replies.
func NewScriptedClient(replies ...string) *ScriptedClient {
	return &ScriptedClient{replies: replies}
}

// Complete implements model.Client.
func (c *ScriptedClient) Complete(_ context.Context, req model.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.replies) == 0 {
		return "", fmt.Errorf("script is empty")
	}
	i := len(c.requests) - 1
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	return c.replies[i], nil
}

// Requests returns the recorded requests.
func (c *ScriptedClient) Requests() []model.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Request(nil), c.requests...)
}

// Sink records emitted messages and notices.
type Sink struct {
	mu       sync.Mutex
	Messages []string
	Notices  []string
}

// Emit implements ports.MessageSink.
func (s *Sink) Emit(_ context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, msg)
	return nil
}

// Notice implements ports.MessageSink.
func (s *Sink) Notice(_ context.Context, notice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notices = append(s.Notices, notice)
	return nil
}

// Lines is an input source that yields fixed lines, then io.EOF.
type Lines struct {
	mu    sync.Mutex
	lines []string
	Reads int
}

// NewLines creates an input source for lines.
func NewLines(lines ...string) *Lines {
	return &Lines{lines: lines}
}

// ReadLine implements ports.InputSource.
func (l *Lines) ReadLine(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.Reads++
	if len(l.lines) == 0 {
		return "", io.EOF
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, nil
}
