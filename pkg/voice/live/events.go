package live

import "github.com/Brighttier/renova-voice/pkg/voice"

// Observer receives ordered session notifications, one per underlying
// event. Transcript, audio, and intent callbacks are invoked from the
// single inbound routing goroutine, so their relative order matches the
// order events occurred. Implementations must not block for long.
type Observer interface {
	OnStatusChange(from, to voice.Status)
	OnTranscript(entry voice.TranscriptEntry)
	OnAudioResponse(pcm []byte)
	OnIntentDetected(kind voice.IntentKind)
	OnError(err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnStatusChange(from, to voice.Status)     {}
func (NopObserver) OnTranscript(entry voice.TranscriptEntry) {}
func (NopObserver) OnAudioResponse(pcm []byte)               {}
func (NopObserver) OnIntentDetected(kind voice.IntentKind)   {}
func (NopObserver) OnError(err error)                        {}
