package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
)

// Input carries everything needed for one model call.
type Input struct {
	StateID string
	Spec    config.StateSpec
	Persona config.Persona
	// SideChannelLabel names the side channel in the prompt, typically the
	// side-channel action name ("search").
	SideChannelLabel string
	Transcript       []domain.Turn
	SideChannel      []domain.SideChannelEntry
}

// SystemPrompt concatenates the persona, the current state, the rendered side
// channel and the state prompt. Empty sections are skipped.
func SystemPrompt(in Input) string {
	sections := []string{
		in.Persona.Role,
		in.Persona.StateMachineLogic,
		in.Persona.WorkPrinciples,
		"CURRENT STATE: " + in.StateID,
		RenderSideChannel(in.SideChannelLabel, in.SideChannel),
		in.Spec.Prompt,
	}

	var parts []string
	for _, s := range sections {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// RenderSideChannel renders one numbered entry per side-channel entry, or the
// empty string when there are none.
//
//	SEARCH HISTORY:
//	Search #1: ...
func RenderSideChannel(label string, entries []domain.SideChannelEntry) string {
	if len(entries) == 0 {
		return ""
	}
	if label == "" {
		label = "side channel"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s HISTORY:\n", strings.ToUpper(label))
	for i, e := range entries {
		fmt.Fprintf(&b, "%s #%d: %s\n\n", capitalize(label), i+1, e.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Messages returns the system prompt followed by the full transcript.
func Messages(system string, transcript []domain.Turn) []Message {
	msgs := make([]Message, 0, len(transcript)+1)
	msgs = append(msgs, Message{Role: domain.RoleSystem, Content: system})
	for _, t := range transcript {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
