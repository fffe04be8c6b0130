// Package process exposes allow-listed local commands as actions.
//
// Parameters never become command-line flags. Each one is passed as a
// PARLANCE_ARG_<NAME> environment variable, and the whole parameter object is
// written to stdin as JSON.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/parlance/pkg/registry"
)

// EnvPrefix prefixes the environment variable of every parameter.
const EnvPrefix = "PARLANCE_ARG_"

// Runner holds the allow-list of commands.
type Runner struct {
	tools   map[string]ProcessConfig
	baseDir string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			tool.Name = name
			r.tools[name] = tool
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{tools: make(map[string]ProcessConfig)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.tools[name] = ProcessConfig{Name: name, Command: command, Args: args}
}

// Names returns the allow-listed names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterActions registers every allow-listed command as an action.
func (r *Runner) RegisterActions(reg *registry.Registry) {
	for _, name := range r.Names() {
		tool := r.tools[name]
		reg.RegisterFunc(name, func(ctx context.Context, params map[string]any) (any, error) {
			return r.run(ctx, tool, params)
		})
	}
}

// Execute runs the command registered as name.
func (r *Runner) Execute(ctx context.Context, name string, params map[string]any) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("process tool not registered: %s", name)
	}
	return r.run(ctx, tool, params)
}

func (r *Runner) run(ctx context.Context, tool ProcessConfig, params map[string]any) (any, error) {
	cmd := exec.CommandContext(ctx, tool.Command, tool.Args...)
	cmd.Dir = r.baseDir

	env := cmd.Environ()
	for k, v := range tool.Environment {
		env = append(env, k+"="+v)
	}
	for k, v := range params {
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+envValue(v))
	}
	cmd.Env = env

	stdin, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	if params == nil {
		stdin = []byte("{}")
	}
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("execution failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseOutput(stdout.String()), nil
}

// envValue renders primitives directly and composite values as JSON.
func envValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, int, int64, float64:
		return fmt.Sprint(val)
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// parseOutput decodes JSON objects and arrays and returns anything else as
// trimmed text.
func parseOutput(output string) any {
	trimmed := strings.TrimSpace(output)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return trimmed
}
