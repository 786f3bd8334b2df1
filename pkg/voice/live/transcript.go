package live

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

// transcriptAssembler is the sole writer of the session transcript.
// Entries are appended in strict arrival order and are never reordered,
// merged, or deleted. No reconciliation of interim against final
// re-transmissions is attempted; callers filter on IsFinal if they want
// a reconciled view.
type transcriptAssembler struct {
	mu      sync.Mutex
	entries []voice.TranscriptEntry
}

func newTranscriptAssembler() *transcriptAssembler {
	return &transcriptAssembler{}
}

// Append records one utterance and returns the stored entry.
func (a *transcriptAssembler) Append(role voice.Role, text string, confidence *float64, final bool) voice.TranscriptEntry {
	entry := voice.TranscriptEntry{
		ID:         uuid.NewString(),
		Role:       role,
		Text:       text,
		Timestamp:  time.Now(),
		Confidence: confidence,
		IsFinal:    final,
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	return entry
}

// Entries returns an ordered copy of the transcript so far.
func (a *transcriptAssembler) Entries() []voice.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]voice.TranscriptEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of entries appended so far.
func (a *transcriptAssembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
