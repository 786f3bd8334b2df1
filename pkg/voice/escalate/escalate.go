// Package escalate packages finished conversations for human hand-off.
//
// Package is a pure transformation: given the same session snapshot,
// priority, and notes it produces byte-identical output, and it performs
// no I/O. Delivering the record somewhere is a separate concern; see
// KafkaForwarder.
package escalate

import (
	"fmt"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

// summaryCharBudget truncates each quoted utterance in the summary.
const summaryCharBudget = 120

// emptySummary is used verbatim when the session has no transcript.
const emptySummary = "No conversation recorded."

// Package derives a ForwardedConversation from a finalized session.
// The snapshot is copied; the result owns its data independently.
func Package(sess *voice.VoiceSession, priority voice.Priority, notes string) voice.ForwardedConversation {
	transcripts := make([]voice.TranscriptEntry, len(sess.Transcripts))
	copy(transcripts, sess.Transcripts)

	intents := make([]voice.IntentKind, len(sess.DetectedIntents))
	copy(intents, sess.DetectedIntents)

	fc := voice.ForwardedConversation{
		ID:              "fwd_" + sess.ID,
		SessionID:       sess.ID,
		UserID:          sess.Context.UserID,
		Transcripts:     transcripts,
		DetectedIntents: intents,
		Summary:         summarize(sess),
		Priority:        priority,
		Notes:           notes,
		ForwardedAt:     sess.StartedAt,
	}
	if sess.EndedAt != nil {
		fc.ForwardedAt = *sess.EndedAt
	}

	for _, rec := range sess.Recordings {
		if rec.Role == voice.RoleUser {
			fc.AudioRef = rec.ID
			break
		}
	}
	return fc
}

// summarize builds the deterministic summary: first user utterance, last
// distinct user utterance, entry count, and elapsed whole minutes.
func summarize(sess *voice.VoiceSession) string {
	if len(sess.Transcripts) == 0 {
		return emptySummary
	}

	var first, last string
	for _, entry := range sess.Transcripts {
		if entry.Role != voice.RoleUser || entry.Text == "" {
			continue
		}
		if first == "" {
			first = entry.Text
		}
		last = entry.Text
	}

	count := len(sess.Transcripts)
	minutes := int(sess.Duration().Minutes())

	if first == "" {
		return fmt.Sprintf("%d transcript entries over %d min; no user utterances.", count, minutes)
	}

	summary := fmt.Sprintf("Opened with %q.", truncate(first))
	if last != first {
		summary += fmt.Sprintf(" Ended with %q.", truncate(last))
	}
	summary += fmt.Sprintf(" %d transcript entries over %d min.", count, minutes)
	return summary
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryCharBudget {
		return s
	}
	return string(runes[:summaryCharBudget]) + "…"
}
