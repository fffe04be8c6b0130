package dsl

import (
	"slices"

	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
)

// Builder manages the state table construction.
type Builder struct {
	cfg    *config.Config
	order  []string
	states map[string]*StateBuilder
}

// New creates a builder with the same defaults as a configuration file.
func New() *Builder {
	return &Builder{
		cfg: &config.Config{
			InitialState:      domain.DefaultInitialState,
			SideChannelAction: domain.DefaultSideChannelAction,
			TerminalStates:    slices.Clone(domain.DefaultTerminalStates),
		},
		states: make(map[string]*StateBuilder),
	}
}

// Initial sets the state a new session starts in.
func (b *Builder) Initial(id string) *Builder {
	b.cfg.InitialState = id
	return b
}

// Persona sets the description block folded into every system prompt.
func (b *Builder) Persona(role, logic, principles string) *Builder {
	b.cfg.Persona = config.Persona{Role: role, StateMachineLogic: logic, WorkPrinciples: principles}
	return b
}

// SideChannel sets the action whose results feed the side channel.
func (b *Builder) SideChannel(action string) *Builder {
	b.cfg.SideChannelAction = action
	return b
}

// Terminal replaces the terminal state names.
func (b *Builder) Terminal(ids ...string) *Builder {
	b.cfg.TerminalStates = ids
	return b
}

// Add creates a new state in the table.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{
		id:      id,
		builder: b,
		spec: config.StateSpec{
			Temperature: domain.DefaultTemperature,
			Model:       domain.DefaultModel,
		},
	}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build returns the configuration and the result of validating it. The
// configuration is returned even when validation reports problems.
func (b *Builder) Build() (*config.Config, error) {
	cfg := *b.cfg
	cfg.TerminalStates = slices.Clone(b.cfg.TerminalStates)
	cfg.States = make(map[string]config.StateSpec, len(b.states))
	for _, id := range b.order {
		spec := b.states[id].spec
		spec.AllowedTransitions = slices.Clone(spec.AllowedTransitions)
		cfg.States[id] = spec
	}
	return &cfg, cfg.Validate()
}
