package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// chunkMailbox is a one-slot outbound buffer with a latest-wins policy.
// If the transport has not picked up the previous chunk, the newest chunk
// replaces it: bounded latency is preferred over lossless audio.
type chunkMailbox struct {
	ch chan AudioChunk
}

func newChunkMailbox() *chunkMailbox {
	return &chunkMailbox{ch: make(chan AudioChunk, 1)}
}

// Put deposits a chunk, evicting an undelivered one if necessary.
// Returns false when a chunk was evicted.
func (m *chunkMailbox) Put(c AudioChunk) bool {
	select {
	case m.ch <- c:
		return true
	default:
	}
	// Slot occupied. Evict the stale chunk and retry once; a concurrent
	// reader may have drained it in between, in which case the send wins.
	select {
	case <-m.ch:
	default:
	}
	select {
	case m.ch <- c:
	default:
	}
	return false
}

// Out is the transport-facing side of the mailbox.
func (m *chunkMailbox) Out() <-chan AudioChunk {
	return m.ch
}

// capturePipeline reads floating-point sample frames from the acquired
// device stream, encodes them to 16-bit PCM, groups them into fixed-size
// chunks, and forwards chunks to the transport mailbox.
type capturePipeline struct {
	format  AudioFormat
	mime    string
	out     *chunkMailbox
	paused  atomic.Bool
	seq     atomic.Int64
	log     *slog.Logger
	onChunk func(pcm []byte)
	onFault func(err error)

	releaseOnce sync.Once
	source      AudioSource
}

func newCapturePipeline(source AudioSource, format AudioFormat, log *slog.Logger) *capturePipeline {
	return &capturePipeline{
		format: format,
		mime:   format.MIMEType(),
		out:    newChunkMailbox(),
		log:    log,
		source: source,
	}
}

// SetPaused suspends or resumes chunk production. A paused pipeline keeps
// draining the device stream but discards samples immediately.
func (p *capturePipeline) SetPaused(paused bool) {
	p.paused.Store(paused)
}

// Release releases the underlying device exactly once.
func (p *capturePipeline) Release() {
	p.releaseOnce.Do(func() {
		if err := p.source.Release(); err != nil {
			p.log.Warn("audio source release failed", "error", err)
		}
	})
}

// run consumes the device stream until the context is cancelled or the
// stream closes. A closed stream while the session is still running means
// the capture device was revoked, which is fatal.
func (p *capturePipeline) run(ctx context.Context, samples <-chan []float32, chunkBytes int) {
	buf := make([]byte, 0, chunkBytes)

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-samples:
			if !ok {
				if ctx.Err() == nil && p.onFault != nil {
					p.onFault(NewDeviceError("capture device stream closed", nil))
				}
				return
			}
			if p.paused.Load() {
				buf = buf[:0]
				continue
			}

			buf = append(buf, EncodePCM16(frame)...)
			for len(buf) >= chunkBytes {
				chunk := make([]byte, chunkBytes)
				copy(chunk, buf[:chunkBytes])
				buf = buf[chunkBytes:]
				p.emit(chunk)
			}
		}
	}
}

func (p *capturePipeline) emit(pcm []byte) {
	if p.onChunk != nil {
		p.onChunk(pcm)
	}
	chunk := AudioChunk{PCM: pcm, MIMEType: p.mime, Seq: p.seq.Add(1)}
	if !p.out.Put(chunk) {
		p.log.Debug("outbound saturated, replaced undelivered chunk",
			"seq", chunk.Seq, "energy", RMSEnergy(pcm))
	}
}
