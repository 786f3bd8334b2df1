package metrics

import (
	"github.com/Brighttier/renova-voice/pkg/voice"
	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

// SessionObserver decorates a live.Observer with Prometheus counters.
// Every notification is counted, then forwarded unchanged.
type SessionObserver struct {
	next live.Observer
	col  *Collector
}

// NewSessionObserver wraps next. A nil next counts without forwarding.
func NewSessionObserver(col *Collector, next live.Observer) *SessionObserver {
	if next == nil {
		next = live.NopObserver{}
	}
	return &SessionObserver{next: next, col: col}
}

func (o *SessionObserver) OnStatusChange(from, to voice.Status) {
	o.col.StatusTransitions.WithLabelValues(to.String()).Inc()
	o.next.OnStatusChange(from, to)
}

func (o *SessionObserver) OnTranscript(entry voice.TranscriptEntry) {
	o.col.TranscriptEntries.WithLabelValues(string(entry.Role)).Inc()
	o.next.OnTranscript(entry)
}

func (o *SessionObserver) OnAudioResponse(pcm []byte) {
	o.col.AudioBytesOut.Add(float64(len(pcm)))
	o.next.OnAudioResponse(pcm)
}

func (o *SessionObserver) OnIntentDetected(kind voice.IntentKind) {
	o.col.IntentsDetected.WithLabelValues(string(kind)).Inc()
	o.next.OnIntentDetected(kind)
}

func (o *SessionObserver) OnError(err error) {
	o.col.SessionErrors.Inc()
	o.next.OnError(err)
}
