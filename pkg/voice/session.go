package voice

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a voice session.
type Status int

const (
	// StatusConnecting is the initial state while capture and transport are acquired.
	StatusConnecting Status = iota
	// StatusActive is when audio is flowing in both directions.
	StatusActive
	// StatusPaused is when microphone capture is suspended; transport and playback stay live.
	StatusPaused
	// StatusEnded is the terminal state after a normal End.
	StatusEnded
	// StatusError is the terminal state after an unrecoverable fault.
	StatusError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "CONNECTING"
	case StatusActive:
		return "ACTIVE"
	case StatusPaused:
		return "PAUSED"
	case StatusEnded:
		return "ENDED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusError
}

// SessionContext is the read-only input captured when a session starts.
// It is consumed exactly once to build the remote service's instructions
// and is never mutated during the session.
type SessionContext struct {
	// Page is the environment or page the user was on when the session began.
	Page string `json:"page,omitempty"`

	// RecentActions is the user's prior action history, oldest first.
	RecentActions []string `json:"recent_actions,omitempty"`

	// KnownIssues lists system faults already known when the session began.
	KnownIssues []string `json:"known_issues,omitempty"`

	// UserID identifies the user for escalation hand-off. Optional.
	UserID string `json:"user_id,omitempty"`
}

// Instructions renders the system instruction text for the remote service.
// The output is deterministic for a fixed context.
func (c SessionContext) Instructions() string {
	var b strings.Builder
	b.WriteString("You are a real-time voice support assistant for a website building platform. ")
	b.WriteString("Keep replies short and conversational; expand numbers and abbreviations for speech.")
	if c.Page != "" {
		fmt.Fprintf(&b, "\nThe user is currently on: %s.", c.Page)
	}
	if len(c.RecentActions) > 0 {
		b.WriteString("\nRecent user actions: ")
		b.WriteString(strings.Join(c.RecentActions, "; "))
		b.WriteString(".")
	}
	if len(c.KnownIssues) > 0 {
		b.WriteString("\nKnown platform issues: ")
		b.WriteString(strings.Join(c.KnownIssues, "; "))
		b.WriteString(".")
	}
	return b.String()
}

// VoiceSession is the finalized snapshot of a conversation.
// The session controller owns it exclusively while the session runs;
// once the status is terminal the snapshot is immutable and ownership
// passes to the caller.
type VoiceSession struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Status    Status     `json:"status"`

	// Transcripts is append-only and time-ordered.
	Transcripts []TranscriptEntry `json:"transcripts"`

	// Recordings holds one merged recording per role, created at session end.
	Recordings []AudioRecording `json:"recordings"`

	// DetectedIntents is deduplicated and insertion-ordered.
	DetectedIntents []IntentKind `json:"detected_intents"`

	Context SessionContext `json:"context"`
}

// Duration returns the elapsed session time, or zero if the session never ended.
func (s *VoiceSession) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
