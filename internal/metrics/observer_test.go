package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Brighttier/renova-voice/pkg/voice"
	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

type recordingObserver struct {
	statuses int
	entries  int
	audio    int
	intents  int
	errs     int
}

func (r *recordingObserver) OnStatusChange(from, to voice.Status) {
	r.statuses++
}

func (r *recordingObserver) OnTranscript(e voice.TranscriptEntry) {
	r.entries++
}

func (r *recordingObserver) OnAudioResponse(pcm []byte) {
	r.audio++
}

func (r *recordingObserver) OnIntentDetected(kind voice.IntentKind) {
	r.intents++
}

func (r *recordingObserver) OnError(err error) {
	r.errs++
}

func TestSessionObserverCountsAndForwards(t *testing.T) {
	t.Parallel()
	col := NewCollector()
	next := &recordingObserver{}
	obs := NewSessionObserver(col, next)

	obs.OnStatusChange(voice.StatusConnecting, voice.StatusActive)
	obs.OnTranscript(voice.TranscriptEntry{Role: voice.RoleUser, Text: "hi"})
	obs.OnTranscript(voice.TranscriptEntry{Role: voice.RoleAssistant, Text: "hello"})
	obs.OnAudioResponse(make([]byte, 960))
	obs.OnIntentDetected(voice.IntentSSLIssue)
	obs.OnError(errors.New("boom"))

	if next.statuses != 1 || next.entries != 2 || next.audio != 1 || next.intents != 1 || next.errs != 1 {
		t.Fatalf("notifications not forwarded: %+v", next)
	}

	if got := testutil.ToFloat64(col.StatusTransitions.WithLabelValues("ACTIVE")); got != 1 {
		t.Errorf("status transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(col.TranscriptEntries.WithLabelValues("user")); got != 1 {
		t.Errorf("user transcript entries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(col.AudioBytesOut); got != 960 {
		t.Errorf("audio bytes = %v, want 960", got)
	}
	if got := testutil.ToFloat64(col.IntentsDetected.WithLabelValues("ssl_issue")); got != 1 {
		t.Errorf("intents = %v, want 1", got)
	}
	if got := testutil.ToFloat64(col.SessionErrors); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestSessionObserverNilNext(t *testing.T) {
	t.Parallel()
	obs := NewSessionObserver(NewCollector(), nil)
	obs.OnStatusChange(voice.StatusActive, voice.StatusEnded)
	obs.OnError(errors.New("boom"))
}

var _ live.Observer = (*SessionObserver)(nil)
