// Package gemini adapts the Gemini Live API to the session Connection
// boundary. Core session logic never sees the vendor SDK; it depends
// only on the closed inbound frame union.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"google.golang.org/genai"

	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

// Dialer opens Gemini Live connections.
type Dialer struct {
	// APIKey authenticates against the Gemini API.
	APIKey string
}

// NewDialer creates a dialer with the given API key.
func NewDialer(apiKey string) *Dialer {
	return &Dialer{APIKey: apiKey}
}

// Connect opens one live connection. Returning nil error means the setup
// handshake succeeded.
func (d *Dialer) Connect(ctx context.Context, cfg live.ConnectConfig) (live.Connection, error) {
	if d.APIKey == "" {
		return nil, live.NewInitializationError(live.CodeMissingCredential, "gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  d.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	lc := &genai.LiveConnectConfig{
		ResponseModalities:       modalities(cfg.Modalities),
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if cfg.Instructions != "" {
		lc.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: cfg.Instructions}},
		}
	}
	if cfg.Voice != "" {
		lc.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		}
	}

	sess, err := client.Live.Connect(ctx, cfg.Model, lc)
	if err != nil {
		return nil, fmt.Errorf("open live connection: %w", err)
	}

	c := &conn{
		sess:   sess,
		frames: make(chan live.InboundFrame, 64),
		done:   make(chan struct{}),
	}
	go c.receive()
	return c, nil
}

func modalities(ms []live.Modality) []genai.Modality {
	out := make([]genai.Modality, 0, len(ms))
	for _, m := range ms {
		switch m {
		case live.ModalityText:
			out = append(out, genai.ModalityText)
		case live.ModalityAudio:
			out = append(out, genai.ModalityAudio)
		}
	}
	return out
}

type conn struct {
	sess   *genai.Session
	frames chan live.InboundFrame
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (c *conn) Send(frame live.OutboundFrame) error {
	switch f := frame.(type) {
	case live.AudioChunk:
		return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
			Media: &genai.Blob{Data: f.PCM, MIMEType: f.MIMEType},
		})
	case live.TextTurn:
		return c.sess.SendClientContent(genai.LiveClientContentInput{
			Turns: []*genai.Content{
				{Role: "user", Parts: []*genai.Part{{Text: f.Text}}},
			},
			TurnComplete: genai.Ptr(f.TurnComplete),
		})
	default:
		return fmt.Errorf("unsupported outbound frame %T", frame)
	}
}

func (c *conn) Frames() <-chan live.InboundFrame {
	return c.frames
}

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.sess.Close()
	})
	return c.closeErr
}

// receive pumps server messages into the frame channel, preserving
// arrival order exactly.
func (c *conn) receive() {
	defer close(c.frames)
	for {
		msg, err := c.sess.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.deliver(live.Control{Op: live.ControlClose})
			} else {
				c.deliver(live.Control{Op: live.ControlError, Err: err})
			}
			return
		}
		for _, frame := range translate(msg) {
			if !c.deliver(frame) {
				return
			}
		}
	}
}

func (c *conn) deliver(frame live.InboundFrame) bool {
	select {
	case c.frames <- frame:
		return true
	case <-c.done:
		return false
	}
}

// translate maps one server message onto the closed frame union.
func translate(msg *genai.LiveServerMessage) []live.InboundFrame {
	var frames []live.InboundFrame

	if msg.SetupComplete != nil {
		frames = append(frames, live.Control{Op: live.ControlOpen})
	}

	sc := msg.ServerContent
	if sc == nil {
		return frames
	}

	if t := sc.InputTranscription; t != nil && t.Text != "" {
		frames = append(frames, live.UserTranscript{Text: t.Text, Final: t.Finished})
	}
	if t := sc.OutputTranscription; t != nil && t.Text != "" {
		frames = append(frames, live.ModelText{Text: t.Text, TurnComplete: sc.TurnComplete})
	}

	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				frames = append(frames, live.ModelText{Text: part.Text, TurnComplete: sc.TurnComplete})
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				frames = append(frames, live.ModelAudio{
					PCM:      part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				})
			}
		}
	}

	return frames
}
