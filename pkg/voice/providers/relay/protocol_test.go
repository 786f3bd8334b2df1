package relay

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

func TestDecodeServerMessage(t *testing.T) {
	t.Parallel()
	pcm := []byte{0x01, 0x00, 0x02, 0x00}
	b64 := base64.StdEncoding.EncodeToString(pcm)

	tests := []struct {
		name    string
		data    string
		want    live.InboundFrame
		wantErr bool
	}{
		{
			name: "model text",
			data: `{"type":"model_text","text":"hello","turn_complete":true}`,
			want: live.ModelText{Text: "hello", TurnComplete: true},
		},
		{
			name: "model audio",
			data: `{"type":"model_audio","mime_type":"audio/pcm;rate=24000","data_b64":"` + b64 + `"}`,
			want: live.ModelAudio{PCM: pcm, MIMEType: "audio/pcm;rate=24000"},
		},
		{
			name: "user transcript",
			data: `{"type":"user_transcript","text":"hi there","is_final":true}`,
			want: live.UserTranscript{Text: "hi there", Final: true},
		},
		{
			name: "control open",
			data: `{"type":"control","op":"open"}`,
			want: live.Control{Op: live.ControlOpen},
		},
		{
			name: "control close",
			data: `{"type":"control","op":"close"}`,
			want: live.Control{Op: live.ControlClose},
		},
		{
			name:    "unknown type rejected",
			data:    `{"type":"heartbeat"}`,
			wantErr: true,
		},
		{
			name:    "unknown control op rejected",
			data:    `{"type":"control","op":"suspend"}`,
			wantErr: true,
		},
		{
			name:    "invalid json rejected",
			data:    `{"type":`,
			wantErr: true,
		},
		{
			name:    "invalid base64 rejected",
			data:    `{"type":"model_audio","data_b64":"!!not-base64!!"}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeServerMessage([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			switch want := tt.want.(type) {
			case live.ModelAudio:
				gotAudio, ok := got.(live.ModelAudio)
				if !ok || !bytes.Equal(gotAudio.PCM, want.PCM) || gotAudio.MIMEType != want.MIMEType {
					t.Fatalf("got %+v, want %+v", got, want)
				}
			default:
				if got != tt.want {
					t.Fatalf("got %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestDecodeServerMessageControlError(t *testing.T) {
	t.Parallel()
	frame, err := decodeServerMessage([]byte(`{"type":"control","op":"error","message":"quota exceeded"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ctl, ok := frame.(live.Control)
	if !ok || ctl.Op != live.ControlError {
		t.Fatalf("frame = %+v, want error control", frame)
	}
	if ctl.Err == nil || ctl.Err.Error() != "quota exceeded" {
		t.Fatalf("ctl.Err = %v, want the server message", ctl.Err)
	}
}

func TestEncodeOutbound(t *testing.T) {
	t.Parallel()
	pcm := []byte{9, 0, 9, 0}
	msg, err := encodeOutbound(live.AudioChunk{PCM: pcm, MIMEType: "audio/pcm;rate=24000", Seq: 7})
	if err != nil {
		t.Fatalf("encode audio chunk: %v", err)
	}
	chunk, ok := msg.(audioChunkMessage)
	if !ok {
		t.Fatalf("encoded %T, want audioChunkMessage", msg)
	}
	if chunk.Type != typeAudioChunk || chunk.Seq != 7 {
		t.Fatalf("chunk = %+v", chunk)
	}
	if decoded, _ := base64.StdEncoding.DecodeString(chunk.DataB64); !bytes.Equal(decoded, pcm) {
		t.Fatal("audio payload not preserved through base64")
	}

	msg, err = encodeOutbound(live.TextTurn{Text: "hello", TurnComplete: true})
	if err != nil {
		t.Fatalf("encode text turn: %v", err)
	}
	turn, ok := msg.(textTurnMessage)
	if !ok || turn.Type != typeTextTurn || !turn.TurnComplete {
		t.Fatalf("turn = %+v", msg)
	}
}
