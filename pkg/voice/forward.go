package voice

import "time"

// Priority ranks a forwarded conversation for human triage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ForwardedConversation is an independently-owned snapshot of a finished
// session packaged for human hand-off. It is derived from a VoiceSession
// on demand and is not part of the session lifecycle.
type ForwardedConversation struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`

	Transcripts []TranscriptEntry `json:"transcripts"`

	// AudioRef points at the merged user recording, when one exists.
	AudioRef string `json:"audio_ref,omitempty"`

	DetectedIntents []IntentKind `json:"detected_intents"`

	Summary  string   `json:"summary"`
	Priority Priority `json:"priority"`
	Notes    string   `json:"notes,omitempty"`

	ForwardedAt time.Time `json:"forwarded_at"`
}
