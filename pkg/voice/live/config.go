package live

import "log/slog"

// Modality is a response modality requested from the remote service.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// AudioFormat specifies linear 16-bit PCM audio parameters.
type AudioFormat struct {
	// SampleRateHz in Hz. Common values: 16000, 24000, 48000.
	SampleRateHz int `json:"sample_rate_hz"`

	// Channels: 1 for mono, 2 for stereo.
	Channels int `json:"channels"`
}

// DefaultAudioFormat returns the standard capture/playback format.
func DefaultAudioFormat() AudioFormat {
	return AudioFormat{SampleRateHz: 24000, Channels: 1}
}

// BytesPerSecond returns the byte rate for 16-bit samples.
func (f AudioFormat) BytesPerSecond() int {
	return f.SampleRateHz * f.Channels * 2
}

// DurationMs returns the duration in milliseconds for the given byte count.
func (f AudioFormat) DurationMs(bytes int) int {
	if f.BytesPerSecond() == 0 {
		return 0
	}
	return (bytes * 1000) / f.BytesPerSecond()
}

// BytesForDurationMs returns the byte count for the given duration.
func (f AudioFormat) BytesForDurationMs(ms int) int {
	return (f.BytesPerSecond() * ms) / 1000
}

// MIMEType returns the PCM mime type with rate parameter, as sent on the wire.
func (f AudioFormat) MIMEType() string {
	return pcmMIMEType(f.SampleRateHz)
}

// SessionConfig holds all configuration for a voice session.
type SessionConfig struct {
	// Model is the remote conversational model identifier.
	Model string `json:"model"`

	// Voice is the requested voice identity for audio responses.
	Voice string `json:"voice,omitempty"`

	// Modalities are the requested response modalities.
	// Default: text and audio.
	Modalities []Modality `json:"modalities,omitempty"`

	// Format is the capture and playback audio format.
	Format AudioFormat `json:"format"`

	// ChunkMs is the outbound audio chunk size. Default: 20ms.
	ChunkMs int `json:"chunk_ms"`

	// Logger receives structured session logs. Nil means slog.Default().
	Logger *slog.Logger `json:"-"`
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Model:      "gemini-2.0-flash-live-001",
		Modalities: []Modality{ModalityText, ModalityAudio},
		Format:     DefaultAudioFormat(),
		ChunkMs:    20,
	}
}

func (c *SessionConfig) applyDefaults() {
	if c.Format.SampleRateHz == 0 {
		c.Format.SampleRateHz = 24000
	}
	if c.Format.Channels == 0 {
		c.Format.Channels = 1
	}
	if c.ChunkMs <= 0 {
		c.ChunkMs = 20
	}
	if len(c.Modalities) == 0 {
		c.Modalities = []Modality{ModalityText, ModalityAudio}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
