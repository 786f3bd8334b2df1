package live

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// playbackPipeline schedules decoded assistant audio for output strictly
// in arrival order. Decode failures drop the frame and log a warning;
// they never abort the session.
type playbackPipeline struct {
	sink AudioSink
	log  *slog.Logger

	queue chan []byte
	done  chan struct{}

	closeOnce sync.Once
}

func newPlaybackPipeline(sink AudioSink, log *slog.Logger) *playbackPipeline {
	return &playbackPipeline{
		sink:  sink,
		log:   log,
		queue: make(chan []byte, 64),
		done:  make(chan struct{}),
	}
}

// Decode validates an inbound audio frame and returns its PCM payload.
// Only 16-bit linear PCM frames with an even, non-zero payload are valid.
func (p *playbackPipeline) Decode(frame ModelAudio) ([]byte, error) {
	if len(frame.PCM) == 0 {
		return nil, NewDecodeError("empty audio frame", nil)
	}
	if len(frame.PCM)%2 != 0 {
		return nil, NewDecodeError("audio frame has odd byte length", nil)
	}
	if frame.MIMEType != "" && !strings.HasPrefix(frame.MIMEType, "audio/pcm") {
		return nil, NewDecodeError("unsupported audio mime type "+frame.MIMEType, nil)
	}
	return frame.PCM, nil
}

// Enqueue schedules one decoded frame. If the queue is saturated the
// caller blocks until the sink catches up or the pipeline closes; order
// is never changed.
func (p *playbackPipeline) Enqueue(pcm []byte) {
	select {
	case p.queue <- pcm:
	case <-p.done:
	}
}

// run drains the queue into the sink, strictly FIFO.
func (p *playbackPipeline) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case pcm := <-p.queue:
			if err := p.sink.Play(pcm); err != nil {
				p.log.Warn("playback failed, frame dropped", "bytes", len(pcm), "error", err)
			}
		}
	}
}

// Close discards queued audio and closes the sink. Later Enqueue calls
// become no-ops.
func (p *playbackPipeline) Close() {
	p.closeOnce.Do(func() {
		close(p.done)

		// Drain anything still queued so no stale audio survives teardown.
		for {
			select {
			case <-p.queue:
			default:
				if err := p.sink.Close(); err != nil {
					p.log.Warn("audio sink close failed", "error", err)
				}
				return
			}
		}
	})
}
