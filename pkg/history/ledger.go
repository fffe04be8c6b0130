// Package history holds the two append-only transcripts of a session.
//
// The primary transcript is sent to the model on every call. The side channel
// (e.g. retrieved documents) is rendered separately into the system prompt and
// never appears in the primary transcript. A Ledger is not safe for concurrent
// use; it is owned by the single goroutine driving the engine.
package history

import (
	"slices"

	"github.com/aretw0/parlance/pkg/domain"
)

// Ledger is an append-only pair of transcripts.
type Ledger struct {
	turns []domain.Turn
	side  []domain.SideChannelEntry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Restore rebuilds a ledger from previously captured transcripts.
func Restore(turns []domain.Turn, side []domain.SideChannelEntry) *Ledger {
	return &Ledger{
		turns: slices.Clone(turns),
		side:  slices.Clone(side),
	}
}

// AppendTurn records a new turn in the primary transcript.
func (l *Ledger) AppendTurn(role domain.Role, content string) {
	l.turns = append(l.turns, domain.Turn{Role: role, Content: content})
}

// AppendSideChannel records a new side-channel entry.
func (l *Ledger) AppendSideChannel(content string) {
	l.side = append(l.side, domain.SideChannelEntry{Content: content})
}

// Transcript returns a copy of the primary transcript in insertion order.
func (l *Ledger) Transcript() []domain.Turn {
	return slices.Clone(l.turns)
}

// SideChannel returns a copy of the side-channel transcript in insertion order.
func (l *Ledger) SideChannel() []domain.SideChannelEntry {
	return slices.Clone(l.side)
}

// Len returns the number of primary and side-channel entries.
func (l *Ledger) Len() (turns, side int) {
	return len(l.turns), len(l.side)
}
