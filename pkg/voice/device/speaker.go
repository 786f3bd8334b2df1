package device

import (
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

// Speaker plays signed 16-bit PCM through the default output device. It
// buffers internally and feeds oto through an io.Reader, starting the
// player lazily on the first write so silent sessions never open the
// device.
type Speaker struct {
	otoCtx *oto.Context
	format live.AudioFormat

	mu      sync.Mutex
	cond    *sync.Cond
	player  *oto.Player
	buf     []byte
	playing bool
	closed  bool
}

// NewSpeaker opens the output audio context. The 100ms buffer trades a
// little glitch headroom for conversational latency.
func NewSpeaker(format live.AudioFormat) (*Speaker, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   format.SampleRateHz,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   format.BytesForDurationMs(100),
	}
	otoCtx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, live.NewInitializationError(live.CodeCapabilityUnavailable, "speaker init failed")
	}
	<-ready

	s := &Speaker{otoCtx: otoCtx, format: format, buf: make([]byte, 0, format.BytesPerSecond()*2)}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

// Play appends decoded PCM to the playback buffer.
func (s *Speaker) Play(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return live.NewMisuseError("speaker already closed")
	}
	s.buf = append(s.buf, pcm...)

	if !s.playing {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
	return nil
}

// Read implements io.Reader for the oto player. Blocks until audio is
// buffered or the speaker closes; after close it feeds silence so oto can
// drain without underrun noise.
func (s *Speaker) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed && len(s.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush discards buffered audio and stops the current player so the next
// Play starts clean. Used when the user barges in over the model.
func (s *Speaker) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]
	if s.player != nil && s.playing {
		s.playing = false
		player := s.player
		s.player = nil
		s.mu.Unlock()

		player.Pause()
		player.Reset()
		player.Close()
		return
	}
	s.mu.Unlock()
}

// Close stops playback. Safe to call more than once.
func (s *Speaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cond.Broadcast()
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		player.Close()
	}
	return nil
}
