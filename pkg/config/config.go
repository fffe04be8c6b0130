// Package config loads the declarative state table that drives an agent.
//
// Loading is deliberately permissive: only structural parse failures are
// reported. Semantic problems (unknown initial state, dangling transitions)
// surface at runtime, or on demand through Validate.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a configuration document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Persona holds the free-text fields injected into every prompt.
type Persona struct {
	Role              string `mapstructure:"role" json:"role"`
	StateMachineLogic string `mapstructure:"state_machine_logic" json:"state_machine_logic"`
	WorkPrinciples    string `mapstructure:"work_principles" json:"work_principles"`
}

// StateSpec is the configuration of a single state.
type StateSpec struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	Model       string  `json:"model"`
	// AllowedTransitions lists the reachable states. Empty means unrestricted.
	AllowedTransitions []string `json:"transitions"`
}

// Allows reports whether the allow-list admits next.
func (s StateSpec) Allows(next string) bool {
	return len(s.AllowedTransitions) == 0 || slices.Contains(s.AllowedTransitions, next)
}

// Config is the parsed, read-only state table.
type Config struct {
	InitialState      string               `json:"initial_state"`
	States            map[string]StateSpec `json:"states"`
	Persona           Persona              `json:"description"`
	SideChannelAction string               `json:"side_channel_action"`
	TerminalStates    []string             `json:"terminal_states"`
}

// State returns the specification of id.
func (c *Config) State(id string) (StateSpec, bool) {
	spec, ok := c.States[id]
	return spec, ok
}

// HasState reports whether id is a configured state.
func (c *Config) HasState(id string) bool {
	_, ok := c.States[id]
	return ok
}

// IsTerminal reports whether next ends the run.
func (c *Config) IsTerminal(next string) bool {
	return next == "" || slices.Contains(c.TerminalStates, next)
}

// StateIDs returns the configured state identifiers in sorted order.
func (c *Config) StateIDs() []string {
	ids := make([]string, 0, len(c.States))
	for id := range c.States {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// document mirrors the on-disk layout. Pointers distinguish absent keys from
// zero values.
type document struct {
	InitialState      *string             `mapstructure:"initial_state"`
	SideChannelAction *string             `mapstructure:"side_channel_action"`
	TerminalStates    []string            `mapstructure:"terminal_states"`
	Description       Persona             `mapstructure:"description"`
	States            map[string]stateDoc `mapstructure:"states"`
}

type stateDoc struct {
	Prompt      string   `mapstructure:"prompt"`
	Temperature *float64 `mapstructure:"temperature"`
	Model       string   `mapstructure:"model"`
	Transitions []string `mapstructure:"transitions"`
}

// Load reads and parses the configuration at path. The format is chosen from
// the file extension; unknown extensions are parsed as TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		var cerr *domain.ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// FormatFromPath guesses the document format from a file name.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Parse decodes an in-memory configuration document.
func Parse(data []byte, format Format) (*Config, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatTOML, "":
		_, err = toml.Decode(string(data), &raw)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &domain.ConfigError{Err: fmt.Errorf("failed to parse %s: %w", format, err)}
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, &domain.ConfigError{Err: err}
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &domain.ConfigError{Err: fmt.Errorf("failed to decode document: %w", err)}
	}

	return doc.build(), nil
}

func (d document) build() *Config {
	cfg := &Config{
		InitialState:      domain.DefaultInitialState,
		SideChannelAction: domain.DefaultSideChannelAction,
		TerminalStates:    slices.Clone(domain.DefaultTerminalStates),
		Persona:           d.Description,
		States:            make(map[string]StateSpec, len(d.States)),
	}
	if d.InitialState != nil {
		cfg.InitialState = *d.InitialState
	}
	if d.SideChannelAction != nil {
		cfg.SideChannelAction = *d.SideChannelAction
	}
	if d.TerminalStates != nil {
		cfg.TerminalStates = d.TerminalStates
	}

	for id, s := range d.States {
		spec := StateSpec{
			Prompt:             s.Prompt,
			Temperature:        domain.DefaultTemperature,
			Model:              s.Model,
			AllowedTransitions: s.Transitions,
		}
		if s.Temperature != nil {
			spec.Temperature = *s.Temperature
		}
		if spec.Model == "" {
			spec.Model = domain.DefaultModel
		}
		cfg.States[id] = spec
	}
	return cfg
}
