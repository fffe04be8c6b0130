package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/parlance/pkg/domain"
)

// ValidationError aggregates the problems found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("found %d problems:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *ValidationError) Is(target error) bool { return target == domain.ErrConfig }

// Validate performs the semantic checks that Load skips: the initial and error
// states exist, every allow-listed target is a configured or terminal state,
// and every state has a prompt. It also crawls the graph from the initial
// state and reports states that can never be entered.
func (c *Config) Validate() error {
	var problems []string

	if !c.HasState(c.InitialState) {
		problems = append(problems, fmt.Sprintf("initial state '%s' is not defined", c.InitialState))
	}
	if !c.HasState(domain.ErrorState) {
		problems = append(problems, fmt.Sprintf("recovery state '%s' is not defined", domain.ErrorState))
	}

	for _, id := range c.StateIDs() {
		spec := c.States[id]
		if strings.TrimSpace(spec.Prompt) == "" {
			problems = append(problems, fmt.Sprintf("state '%s' has an empty prompt", id))
		}
		for _, target := range spec.AllowedTransitions {
			if !c.HasState(target) && !c.IsTerminal(target) {
				problems = append(problems, fmt.Sprintf("state '%s' allows unknown target '%s'", id, target))
			}
		}
	}

	for _, id := range c.unreachable() {
		problems = append(problems, fmt.Sprintf("state '%s' is unreachable from '%s'", id, c.InitialState))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// unreachable lists states that no allow-list path from the initial state
// reaches. A state with an empty allow-list reaches every state, and the
// error state is always considered reachable.
func (c *Config) unreachable() []string {
	if !c.HasState(c.InitialState) {
		return nil
	}
	visited := map[string]bool{}
	queue := []string{c.InitialState, domain.ErrorState}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		spec, ok := c.States[current]
		if !ok {
			continue
		}
		if len(spec.AllowedTransitions) == 0 {
			return nil
		}
		for _, target := range spec.AllowedTransitions {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var out []string
	for _, id := range c.StateIDs() {
		if !visited[id] {
			out = append(out, id)
		}
	}
	return out
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
