package voice

import "time"

// Role identifies which party produced a transcript entry or recording.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptEntry is one utterance in the session transcript.
// Entries are never reordered or deleted after being appended, and
// finality is immutable once set.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Confidence is the recognizer's confidence, when the source reports one.
	Confidence *float64 `json:"confidence,omitempty"`

	// IsFinal marks entries the source declared final. Interim entries are
	// appended as received; no reconciliation against later re-transmissions
	// is attempted.
	IsFinal bool `json:"is_final"`
}

// AudioRecording is the merged audio for one role, created once at session
// end and never mutated afterward.
type AudioRecording struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	PCM       []byte        `json:"-"`
	MIMEType  string        `json:"mime_type"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}
