package runtime

import (
	"time"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/history"
)

// Session is the mutable state of one conversation.
// It is owned by the engine driving it and must not be shared.
type Session struct {
	ID        string
	State     string
	Status    domain.SessionStatus
	Iteration int

	ledger *history.Ledger
}

// NewSession starts a fresh session in initialState.
func NewSession(id, initialState string) *Session {
	return &Session{
		ID:     id,
		State:  initialState,
		Status: domain.StatusRunning,
		ledger: history.New(),
	}
}

// RestoreSession rebuilds a session from a stored snapshot.
func RestoreSession(snap *domain.Snapshot) *Session {
	return &Session{
		ID:        snap.SessionID,
		State:     snap.CurrentState,
		Status:    snap.Status,
		Iteration: snap.Iteration,
		ledger:    history.Restore(snap.Transcript, snap.SideChannel),
	}
}

// Ledger exposes the session transcripts.
func (s *Session) Ledger() *history.Ledger { return s.ledger }

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		SessionID:    s.ID,
		CurrentState: s.State,
		Status:       s.Status,
		Iteration:    s.Iteration,
		Transcript:   s.ledger.Transcript(),
		SideChannel:  s.ledger.SideChannel(),
		UpdatedAt:    time.Now().UTC(),
	}
}
