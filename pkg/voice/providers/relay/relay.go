// Package relay connects a voice session to a self-hosted websocket
// relay instead of the upstream model API directly. The relay speaks a
// small JSON frame protocol: every message is an envelope with a "type"
// discriminator, binary audio travels base64-encoded.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

const (
	handshakeTimeout = 15 * time.Second
	writeTimeout     = 10 * time.Second
)

// Dialer opens live connections through a websocket relay.
type Dialer struct {
	// URL is the relay endpoint, e.g. wss://relay.example.com/v1/live.
	URL string

	// Header is attached to the websocket upgrade request. Useful for
	// bearer tokens when the relay sits behind an auth proxy.
	Header http.Header
}

// Connect dials the relay, sends the hello describing the session, and
// waits for the relay's open control frame before handing the connection
// back. A relay that answers with anything else is treated as broken.
func (d *Dialer) Connect(ctx context.Context, cfg live.ConnectConfig) (live.Connection, error) {
	if d.URL == "" {
		return nil, live.NewInitializationError(live.CodeMissingCredential, "relay url is not set")
	}

	wsDialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, resp, err := wsDialer.DialContext(ctx, d.URL, d.Header)
	if err != nil {
		if resp != nil {
			return nil, live.NewTransportError(fmt.Sprintf("relay dial failed: %s", resp.Status), err)
		}
		return nil, live.NewTransportError("relay dial failed", err)
	}

	modalities := make([]string, len(cfg.Modalities))
	for i, m := range cfg.Modalities {
		modalities[i] = string(m)
	}
	hello := helloMessage{
		Type:         typeHello,
		Model:        cfg.Model,
		Instructions: cfg.Instructions,
		Voice:        cfg.Voice,
		Modalities:   modalities,
		AudioIn: audioFormat{
			Encoding:     "pcm_s16le",
			SampleRateHz: cfg.Input.SampleRateHz,
			Channels:     cfg.Input.Channels,
		},
		AudioOut: audioFormat{
			Encoding:     "pcm_s16le",
			SampleRateHz: cfg.Output.SampleRateHz,
			Channels:     cfg.Output.Channels,
		},
	}
	ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(hello); err != nil {
		ws.Close()
		return nil, live.NewTransportError("relay hello failed", err)
	}

	ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := ws.ReadMessage()
	if err != nil {
		ws.Close()
		return nil, live.NewTransportError("relay handshake failed", err)
	}
	ws.SetReadDeadline(time.Time{})
	frame, err := decodeServerMessage(data)
	if err != nil {
		ws.Close()
		return nil, live.NewTransportError("relay handshake failed", err)
	}
	ctl, ok := frame.(live.Control)
	if !ok || ctl.Op != live.ControlOpen {
		ws.Close()
		return nil, live.NewTransportError("relay refused the session", ctl.Err)
	}

	c := &conn{ws: ws, frames: make(chan live.InboundFrame, 64), done: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

type conn struct {
	ws     *websocket.Conn
	frames chan live.InboundFrame

	// writeMu serialises writers; gorilla permits one concurrent writer.
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

func (c *conn) Send(frame live.OutboundFrame) error {
	msg, err := encodeOutbound(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("relay write failed: %w", err)
	}
	return nil
}

func (c *conn) Frames() <-chan live.InboundFrame {
	return c.frames
}

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.ws.Close()
	})
	return nil
}

// readLoop decodes relay messages into inbound frames until the socket
// dies. Closing the frames channel is the connection's end-of-stream
// signal, so it happens on every exit path.
func (c *conn) readLoop() {
	defer close(c.frames)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.deliver(live.Control{Op: live.ControlClose})
				return
			}
			select {
			case <-c.done:
				return
			default:
			}
			c.deliver(live.Control{Op: live.ControlError, Err: err})
			return
		}
		frame, err := decodeServerMessage(data)
		if err != nil {
			c.deliver(live.Control{Op: live.ControlError, Err: err})
			return
		}
		c.deliver(frame)
	}
}

func (c *conn) deliver(frame live.InboundFrame) {
	select {
	case c.frames <- frame:
	case <-c.done:
	}
}
