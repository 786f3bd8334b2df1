package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    []OutboundFrame
	sendErr error
	frames  chan InboundFrame
	closes  int
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan InboundFrame, 16)}
}

func (c *fakeConn) Send(frame OutboundFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, frame)
	return nil
}

func (c *fakeConn) Frames() <-chan InboundFrame { return c.frames }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestTransportChunkSendFailureIsSkipped(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	conn.sendErr = errors.New("transient backpressure")
	tr := newTransport(conn, slog.Default())

	var fatal error
	tr.onFatal = func(err error) { fatal = err }

	ctx, cancel := context.WithCancel(context.Background())
	chunks := make(chan AudioChunk, 2)
	chunks <- AudioChunk{Seq: 1, PCM: []byte{0, 0}}
	chunks <- AudioChunk{Seq: 2, PCM: []byte{0, 0}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.sendLoop(ctx, chunks)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if fatal != nil {
		t.Fatalf("chunk send failure escalated to fatal: %v", fatal)
	}
}

func TestTransportRoutesNonControlFrames(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	tr := newTransport(conn, slog.Default())

	var got []InboundFrame
	tr.onFrame = func(f InboundFrame) { got = append(got, f) }

	ctx, cancel := context.WithCancel(context.Background())
	conn.frames <- ModelText{Text: "hello"}
	conn.frames <- UserTranscript{Text: "hi", Final: true}
	conn.frames <- ModelAudio{PCM: []byte{0, 0}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.receiveLoop(ctx)
	}()

	deadline := time.After(time.Second)
	for tr.received.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("frames not routed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if len(got) != 3 {
		t.Fatalf("routed %d frames, want 3", len(got))
	}
	if _, ok := got[0].(ModelText); !ok {
		t.Errorf("frame 0 = %T, arrival order broken", got[0])
	}
	if _, ok := got[1].(UserTranscript); !ok {
		t.Errorf("frame 1 = %T, arrival order broken", got[1])
	}
}

func TestTransportConnectionFailuresAreFatal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		feed func(c *fakeConn)
	}{
		{"control error frame", func(c *fakeConn) {
			c.frames <- Control{Op: ControlError, Err: errors.New("server fault")}
		}},
		{"remote close", func(c *fakeConn) {
			c.frames <- Control{Op: ControlClose}
		}},
		{"channel closed", func(c *fakeConn) {
			close(c.frames)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn()
			tr := newTransport(conn, slog.Default())

			fatal := make(chan error, 1)
			tr.onFatal = func(err error) { fatal <- err }

			tt.feed(conn)
			done := make(chan struct{})
			go func() {
				defer close(done)
				tr.receiveLoop(context.Background())
			}()

			select {
			case err := <-fatal:
				if KindOf(err) != ErrTransport {
					t.Fatalf("kind = %v, want transport error", KindOf(err))
				}
			case <-time.After(time.Second):
				t.Fatal("no fatal escalation")
			}
			<-done
		})
	}
}

func TestTransportCloseAfterCancelIsQuiet(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	tr := newTransport(conn, slog.Default())

	var fatal error
	tr.onFatal = func(err error) { fatal = err }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	close(conn.frames)
	tr.receiveLoop(ctx)

	if fatal != nil {
		t.Fatalf("teardown close reported fatal: %v", fatal)
	}
}

func TestTransportCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	tr := newTransport(conn, slog.Default())
	tr.Close()
	tr.Close()
	if conn.closes != 1 {
		t.Fatalf("connection closed %d times, want exactly once", conn.closes)
	}
}
