package domain

import "time"

// Role identifies the author of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one element of the primary transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SideChannelEntry is one element of the secondary transcript.
type SideChannelEntry struct {
	Content string `json:"content"`
}

// Decision is the parsed result of one model invocation.
// It is owned by the engine for the duration of a single iteration.
type Decision struct {
	Action       string         `json:"action"`
	Message      string         `json:"message"`
	NextState    string         `json:"next_state"`
	RequireInput bool           `json:"require_input"`
	ActionParams map[string]any `json:"action_params,omitempty"`
}

// FallbackDecision returns the canned decision used when the model cannot be
// reached or its response cannot be parsed.
func FallbackDecision() Decision {
	return Decision{
		Action:       ActionError,
		Message:      FallbackMessage,
		NextState:    ErrorState,
		RequireInput: true,
		ActionParams: map[string]any{},
	}
}

// SessionStatus describes where a session is in its lifecycle.
type SessionStatus string

const (
	StatusRunning      SessionStatus = "running"
	StatusWaitingInput SessionStatus = "waiting_input"
	StatusTerminated   SessionStatus = "terminated"
	StatusFailed       SessionStatus = "failed"
)

// Snapshot is the serializable view of a session.
type Snapshot struct {
	SessionID    string             `json:"session_id"`
	CurrentState string             `json:"current_state"`
	Status       SessionStatus      `json:"status"`
	Iteration    int                `json:"iteration"`
	Transcript   []Turn             `json:"transcript"`
	SideChannel  []SideChannelEntry `json:"side_channel"`
	UpdatedAt    time.Time          `json:"updated_at"`
	// Sealed holds the encrypted snapshot when a store encrypts at rest.
	// The other content fields are then empty.
	Sealed string `json:"sealed,omitempty"`
}
