package live

import (
	"bytes"
	"testing"
	"time"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

func TestRecorderMergesPerRole(t *testing.T) {
	t.Parallel()
	r := newRecorder(DefaultAudioFormat())

	r.Append(voice.RoleUser, []byte{1, 2})
	r.Append(voice.RoleAssistant, []byte{9, 9})
	r.Append(voice.RoleUser, []byte{3, 4})

	started := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	ended := started.Add(90 * time.Second)
	recs := r.Merge(started, ended)

	if len(recs) != 2 {
		t.Fatalf("recordings = %d, want 2", len(recs))
	}
	if recs[0].Role != voice.RoleUser || recs[1].Role != voice.RoleAssistant {
		t.Fatalf("role order = %s, %s", recs[0].Role, recs[1].Role)
	}
	if !bytes.Equal(recs[0].PCM, []byte{1, 2, 3, 4}) {
		t.Errorf("user PCM = %v, chunks not concatenated in order", recs[0].PCM)
	}
	for _, rec := range recs {
		if rec.Duration != 90*time.Second {
			t.Errorf("%s duration = %v, want session elapsed time", rec.Role, rec.Duration)
		}
		if rec.MIMEType != "audio/pcm;rate=24000" {
			t.Errorf("%s mime = %q", rec.Role, rec.MIMEType)
		}
	}
}

func TestRecorderSkipsSilentRole(t *testing.T) {
	t.Parallel()
	r := newRecorder(DefaultAudioFormat())
	r.Append(voice.RoleUser, []byte{1, 2})

	recs := r.Merge(time.Now(), time.Now())
	if len(recs) != 1 || recs[0].Role != voice.RoleUser {
		t.Fatalf("recordings = %+v, want just the user recording", recs)
	}
}

func TestRecorderDiscardsAfterMerge(t *testing.T) {
	t.Parallel()
	r := newRecorder(DefaultAudioFormat())
	r.Append(voice.RoleUser, []byte{1, 2})
	r.Merge(time.Now(), time.Now())

	r.Append(voice.RoleUser, []byte{5, 6})
	if got := r.buffers[voice.RoleUser]; !bytes.Equal(got, []byte{1, 2}) {
		t.Fatalf("append after merge mutated buffer: %v", got)
	}
}
