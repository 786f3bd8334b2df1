package relay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

// Wire message types. The server-to-client set maps one-to-one onto the
// session's closed inbound frame union; anything else is a protocol
// violation and therefore fatal.
const (
	typeHello          = "hello"
	typeAudioChunk     = "audio_chunk"
	typeTextTurn       = "text_turn"
	typeModelText      = "model_text"
	typeModelAudio     = "model_audio"
	typeUserTranscript = "user_transcript"
	typeControl        = "control"
)

type audioFormat struct {
	Encoding     string `json:"encoding"`
	SampleRateHz int    `json:"sample_rate_hz"`
	Channels     int    `json:"channels"`
}

type helloMessage struct {
	Type         string      `json:"type"`
	Model        string      `json:"model"`
	Instructions string      `json:"instructions,omitempty"`
	Voice        string      `json:"voice,omitempty"`
	Modalities   []string    `json:"modalities,omitempty"`
	AudioIn      audioFormat `json:"audio_in"`
	AudioOut     audioFormat `json:"audio_out"`
}

type audioChunkMessage struct {
	Type     string `json:"type"`
	Seq      int64  `json:"seq"`
	MIMEType string `json:"mime_type"`
	DataB64  string `json:"data_b64"`
}

type textTurnMessage struct {
	Type         string `json:"type"`
	Text         string `json:"text"`
	TurnComplete bool   `json:"turn_complete"`
}

type modelTextMessage struct {
	Type         string `json:"type"`
	Text         string `json:"text"`
	TurnComplete bool   `json:"turn_complete"`
}

type modelAudioMessage struct {
	Type     string `json:"type"`
	MIMEType string `json:"mime_type"`
	DataB64  string `json:"data_b64"`
}

type userTranscriptMessage struct {
	Type       string   `json:"type"`
	Text       string   `json:"text"`
	IsFinal    bool     `json:"is_final"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type controlMessage struct {
	Type    string `json:"type"`
	Op      string `json:"op"`
	Message string `json:"message,omitempty"`
}

// decodeServerMessage maps one wire message onto the inbound frame union.
func decodeServerMessage(data []byte) (live.InboundFrame, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid json frame: %w", err)
	}

	switch envelope.Type {
	case typeModelText:
		var msg modelTextMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid model_text frame: %w", err)
		}
		return live.ModelText{Text: msg.Text, TurnComplete: msg.TurnComplete}, nil

	case typeModelAudio:
		var msg modelAudioMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid model_audio frame: %w", err)
		}
		pcm, err := base64.StdEncoding.DecodeString(msg.DataB64)
		if err != nil {
			return nil, fmt.Errorf("invalid model_audio payload: %w", err)
		}
		return live.ModelAudio{PCM: pcm, MIMEType: msg.MIMEType}, nil

	case typeUserTranscript:
		var msg userTranscriptMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid user_transcript frame: %w", err)
		}
		return live.UserTranscript{Text: msg.Text, Confidence: msg.Confidence, Final: msg.IsFinal}, nil

	case typeControl:
		var msg controlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid control frame: %w", err)
		}
		switch msg.Op {
		case "open":
			return live.Control{Op: live.ControlOpen}, nil
		case "close":
			return live.Control{Op: live.ControlClose}, nil
		case "error":
			return live.Control{Op: live.ControlError, Err: fmt.Errorf("%s", msg.Message)}, nil
		default:
			return nil, fmt.Errorf("unsupported control op %q", msg.Op)
		}

	default:
		return nil, fmt.Errorf("unsupported message type %q", envelope.Type)
	}
}

func encodeOutbound(frame live.OutboundFrame) (any, error) {
	switch f := frame.(type) {
	case live.AudioChunk:
		return audioChunkMessage{
			Type:     typeAudioChunk,
			Seq:      f.Seq,
			MIMEType: f.MIMEType,
			DataB64:  base64.StdEncoding.EncodeToString(f.PCM),
		}, nil
	case live.TextTurn:
		return textTurnMessage{Type: typeTextTurn, Text: f.Text, TurnComplete: f.TurnComplete}, nil
	default:
		return nil, fmt.Errorf("unsupported outbound frame %T", frame)
	}
}
