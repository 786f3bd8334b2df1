package live

import (
	"context"
	"fmt"
)

// OutboundFrame is one client-to-service unit of the streaming protocol.
type OutboundFrame interface {
	outboundFrame()
}

// AudioChunk carries one encoded microphone chunk.
type AudioChunk struct {
	PCM      []byte
	MIMEType string
	Seq      int64
}

func (AudioChunk) outboundFrame() {}

// TextTurn carries a typed user message.
type TextTurn struct {
	Text         string
	TurnComplete bool
}

func (TextTurn) outboundFrame() {}

// InboundFrame is one service-to-client unit. The set of implementations
// below is closed; routing handles every kind exhaustively.
type InboundFrame interface {
	inboundFrame()
}

// ModelText is assistant text, either a full turn or a turn fragment.
type ModelText struct {
	Text         string
	TurnComplete bool
}

func (ModelText) inboundFrame() {}

// ModelAudio is one assistant audio frame.
type ModelAudio struct {
	PCM      []byte
	MIMEType string
}

func (ModelAudio) inboundFrame() {}

// UserTranscript is the service's transcription of user speech.
type UserTranscript struct {
	Text       string
	Confidence *float64
	Final      bool
}

func (UserTranscript) inboundFrame() {}

// ControlOp identifies a control frame.
type ControlOp int

const (
	ControlOpen ControlOp = iota
	ControlError
	ControlClose
)

// String returns the control op name.
func (op ControlOp) String() string {
	switch op {
	case ControlOpen:
		return "open"
	case ControlError:
		return "error"
	case ControlClose:
		return "close"
	default:
		return "unknown"
	}
}

// Control signals a connection lifecycle change.
type Control struct {
	Op  ControlOp
	Err error
}

func (Control) inboundFrame() {}

// ConnectConfig is everything a dialer needs to open one duplex connection.
type ConnectConfig struct {
	Model        string
	Instructions string
	Voice        string
	Modalities   []Modality
	Input        AudioFormat
	Output       AudioFormat
}

// Connection is one long-lived duplex connection to the remote
// conversational service. Implementations deliver inbound frames on
// a single channel in exactly the order they arrive.
type Connection interface {
	// Send writes one outbound frame. A failed audio chunk send is
	// recoverable; callers decide whether to escalate.
	Send(frame OutboundFrame) error

	// Frames is the ordered inbound frame stream. The channel is closed
	// after a Control close or error frame, or when Close is called.
	Frames() <-chan InboundFrame

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Dialer opens connections to the remote conversational service.
// Connect returning nil error means the handshake succeeded.
type Dialer interface {
	Connect(ctx context.Context, cfg ConnectConfig) (Connection, error)
}

// AudioSource is the capability boundary for microphone input.
// Acquire hands back a stream of sample frames in [-1.0, 1.0];
// Release must be safe to call on every exit path.
type AudioSource interface {
	Acquire(ctx context.Context) (<-chan []float32, error)
	Release() error
}

// AudioSink is the capability boundary for audio output.
type AudioSink interface {
	// Play schedules one 16-bit little-endian PCM buffer for output.
	Play(pcm []byte) error
	Close() error
}

func pcmMIMEType(rateHz int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", rateHz)
}
