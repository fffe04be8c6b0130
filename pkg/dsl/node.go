package dsl

import "github.com/aretw0/parlance/pkg/config"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	id      string
	spec    config.StateSpec
	builder *Builder
}

// Prompt sets the state instructions.
func (s *StateBuilder) Prompt(text string) *StateBuilder {
	s.spec.Prompt = text
	return s
}

// Temperature sets the sampling temperature.
func (s *StateBuilder) Temperature(t float64) *StateBuilder {
	s.spec.Temperature = t
	return s
}

// Model sets the model identifier.
func (s *StateBuilder) Model(name string) *StateBuilder {
	s.spec.Model = name
	return s
}

// Go adds targets to the allow-list. A state without targets may move to
// any configured state.
func (s *StateBuilder) Go(targets ...string) *StateBuilder {
	s.spec.AllowedTransitions = append(s.spec.AllowedTransitions, targets...)
	return s
}

// Add starts the next state.
func (s *StateBuilder) Add(id string) *StateBuilder {
	return s.builder.Add(id)
}

// Build finishes the table. See Builder.Build.
func (s *StateBuilder) Build() (*config.Config, error) {
	return s.builder.Build()
}

// Spec returns the state specification built so far.
func (s *StateBuilder) Spec() config.StateSpec {
	return s.spec
}
