package live

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

// recorder passively accumulates raw PCM chunks keyed by role while the
// session runs. Merge is called once at session end; afterwards further
// appends are discarded.
type recorder struct {
	format AudioFormat

	mu        sync.Mutex
	buffers   map[voice.Role][]byte
	finalized bool
}

func newRecorder(format AudioFormat) *recorder {
	return &recorder{
		format:  format,
		buffers: make(map[voice.Role][]byte, 2),
	}
}

// Append accumulates one chunk for the given role.
func (r *recorder) Append(role voice.Role, pcm []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized || len(pcm) == 0 {
		return
	}
	r.buffers[role] = append(r.buffers[role], pcm...)
}

// Merge finalizes the accumulated chunks into one recording per role that
// produced audio. Duration is the session's elapsed time, not the audio
// length, matching the escalation record's expectations.
func (r *recorder) Merge(startedAt, endedAt time.Time) []voice.AudioRecording {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finalized = true

	var out []voice.AudioRecording
	for _, role := range []voice.Role{voice.RoleUser, voice.RoleAssistant} {
		pcm := r.buffers[role]
		if len(pcm) == 0 {
			continue
		}
		out = append(out, voice.AudioRecording{
			ID:        uuid.NewString(),
			Role:      role,
			PCM:       pcm,
			MIMEType:  r.format.MIMEType(),
			Duration:  endedAt.Sub(startedAt),
			Timestamp: startedAt,
		})
	}
	return out
}
