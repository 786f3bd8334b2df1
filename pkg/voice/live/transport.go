package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// transport owns the session's single duplex connection. It frames
// outbound audio and text, demultiplexes inbound frames, and applies the
// failure policy: a single chunk send failure is logged and skipped; a
// connection-level failure is fatal and escalates to the controller.
// Reconnection is never attempted.
type transport struct {
	conn Connection
	log  *slog.Logger

	// onFrame receives every non-control inbound frame, in arrival order.
	onFrame func(InboundFrame)
	// onFatal receives connection-level failures.
	onFatal func(error)

	received  atomic.Int64
	closeOnce sync.Once
}

func newTransport(conn Connection, log *slog.Logger) *transport {
	return &transport{conn: conn, log: log}
}

// SendText writes one text turn. Failures surface to the caller; they do
// not end the session on their own.
func (t *transport) SendText(text string, turnComplete bool) error {
	return t.conn.Send(TextTurn{Text: text, TurnComplete: turnComplete})
}

// sendLoop forwards capture chunks until the context is cancelled.
func (t *transport) sendLoop(ctx context.Context, chunks <-chan AudioChunk) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk := <-chunks:
			if err := t.conn.Send(chunk); err != nil {
				t.log.Warn("audio chunk send failed, skipped", "seq", chunk.Seq, "error", err)
			}
		}
	}
}

// receiveLoop demultiplexes inbound frames. The frame order observed by
// onFrame is exactly the connection's arrival order.
func (t *transport) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-t.conn.Frames():
			if !ok {
				if ctx.Err() == nil {
					t.fatal(NewTransportError("connection closed unexpectedly", nil))
				}
				return
			}
			t.received.Add(1)

			ctrl, isControl := frame.(Control)
			if !isControl {
				if t.onFrame != nil {
					t.onFrame(frame)
				}
				continue
			}

			switch ctrl.Op {
			case ControlOpen:
				t.log.Debug("connection open acknowledged")
			case ControlError:
				t.fatal(NewTransportError("connection reported an error", ctrl.Err))
				return
			case ControlClose:
				if ctx.Err() == nil {
					t.fatal(NewTransportError("remote closed the connection", ctrl.Err))
				}
				return
			}
		}
	}
}

func (t *transport) fatal(err error) {
	if t.onFatal != nil {
		t.onFatal(err)
	}
}

// Close releases the connection exactly once.
func (t *transport) Close() {
	t.closeOnce.Do(func() {
		if err := t.conn.Close(); err != nil {
			t.log.Warn("connection close failed", "error", err)
		}
	})
}
