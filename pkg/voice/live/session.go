package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Brighttier/renova-voice/pkg/voice"
	"github.com/Brighttier/renova-voice/pkg/voice/intent"
)

// Session drives one real-time voice conversation: it owns the capture
// pipeline, the duplex transport, playback, the transcript, and the
// lifecycle state machine CONNECTING -> ACTIVE <-> PAUSED -> ENDED, with
// any state able to fall into ERROR. One session per Session value;
// overlapping Start calls are rejected.
type Session struct {
	cfg      SessionConfig
	dialer   Dialer
	source   AudioSource
	observer Observer
	log      *slog.Logger

	id        string
	startedAt time.Time
	sessCtx   voice.SessionContext

	transcripts *transcriptAssembler
	intents     *intent.Tracker
	rec         *recorder
	capture     *capturePipeline
	playback    *playbackPipeline
	trans       *transport

	mu      sync.Mutex
	status  voice.Status
	started bool

	ctx    context.Context
	cancel context.CancelFunc

	// terminal flips exactly once, by End or by the first fatal fault.
	terminal atomic.Bool
	finished chan struct{}
	final    *voice.VoiceSession
}

// NewSession creates a session controller. The observer may be nil.
func NewSession(cfg SessionConfig, dialer Dialer, source AudioSource, sink AudioSink, observer Observer) *Session {
	cfg.applyDefaults()
	if observer == nil {
		observer = NopObserver{}
	}

	log := cfg.Logger
	s := &Session{
		cfg:         cfg,
		dialer:      dialer,
		source:      source,
		observer:    observer,
		log:         log,
		id:          uuid.NewString(),
		transcripts: newTranscriptAssembler(),
		intents:     intent.NewTracker(),
		rec:         newRecorder(cfg.Format),
		capture:     newCapturePipeline(source, cfg.Format, log),
		playback:    newPlaybackPipeline(sink, log),
		status:      voice.StatusConnecting,
		finished:    make(chan struct{}),
	}

	s.capture.onChunk = func(pcm []byte) { s.rec.Append(voice.RoleUser, pcm) }
	s.capture.onFault = s.fail

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Status returns the current lifecycle status.
func (s *Session) Status() voice.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Start acquires the capture device, opens the transport, and on
// handshake success transitions to ACTIVE. Any acquisition or handshake
// failure transitions to ERROR with full teardown and returns a typed
// initialization failure.
func (s *Session) Start(ctx context.Context, sessCtx voice.SessionContext) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return NewMisuseError("session already started")
	}
	s.started = true
	s.sessCtx = sessCtx
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)

	samples, err := s.source.Acquire(s.ctx)
	if err != nil {
		err = asInitError("acquire audio capture", err)
		s.fail(err)
		return err
	}

	conn, err := s.dialer.Connect(s.ctx, ConnectConfig{
		Model:        s.cfg.Model,
		Instructions: sessCtx.Instructions(),
		Voice:        s.cfg.Voice,
		Modalities:   s.cfg.Modalities,
		Input:        s.cfg.Format,
		Output:       s.cfg.Format,
	})
	if err != nil {
		err = asInitError("connect to conversational service", err)
		s.fail(err)
		return err
	}

	s.trans = newTransport(conn, s.log)
	s.trans.onFrame = s.routeFrame
	s.trans.onFatal = s.fail

	chunkBytes := s.cfg.Format.BytesForDurationMs(s.cfg.ChunkMs)
	go s.capture.run(s.ctx, samples, chunkBytes)
	go s.trans.sendLoop(s.ctx, s.capture.out.Out())
	go s.trans.receiveLoop(s.ctx)
	go s.playback.run(s.ctx)

	s.setStatus(voice.StatusActive)
	s.log.Info("session started", "session_id", s.id, "model", s.cfg.Model)
	return nil
}

// Pause suspends microphone capture. Transport and playback remain live,
// so in-flight assistant audio still plays. Pausing a paused session is a
// no-op; pausing from any other state is a misuse error.
func (s *Session) Pause() error {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	switch status {
	case voice.StatusPaused:
		return nil
	case voice.StatusActive:
		s.capture.SetPaused(true)
		s.setStatus(voice.StatusPaused)
		return nil
	default:
		return NewMisuseError(fmt.Sprintf("pause invalid in state %s", status))
	}
}

// Resume restarts microphone capture after a Pause.
func (s *Session) Resume() error {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	switch status {
	case voice.StatusActive:
		return nil
	case voice.StatusPaused:
		s.capture.SetPaused(false)
		s.setStatus(voice.StatusActive)
		return nil
	default:
		return NewMisuseError(fmt.Sprintf("resume invalid in state %s", status))
	}
}

// SendText submits a typed user message as a complete turn. Valid only
// while ACTIVE; otherwise rejected without affecting session state.
func (s *Session) SendText(text string) error {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	if status != voice.StatusActive {
		return NewMisuseError(fmt.Sprintf("sendText invalid in state %s", status))
	}

	entry := s.transcripts.Append(voice.RoleUser, text, nil, true)
	s.observer.OnTranscript(entry)
	s.observeIntent(text)

	if err := s.trans.SendText(text, true); err != nil {
		s.log.Warn("text turn send failed", "session_id", s.id, "error", err)
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

// End finalizes the session from any non-terminal state and returns the
// immutable snapshot. A second call returns the identical snapshot
// without re-running teardown.
func (s *Session) End() (*voice.VoiceSession, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, NewMisuseError("session never started")
	}

	if s.terminal.CompareAndSwap(false, true) {
		s.finish(voice.StatusEnded)
	}
	<-s.finished
	return s.final, nil
}

// Snapshot returns the finalized session, or nil before termination.
func (s *Session) Snapshot() *voice.VoiceSession {
	select {
	case <-s.finished:
		return s.final
	default:
		return nil
	}
}

// fail forces the session into ERROR with the same teardown guarantee as
// End. Late faults after a terminal state are ignored.
func (s *Session) fail(err error) {
	if !s.terminal.CompareAndSwap(false, true) {
		return
	}
	s.log.Error("session failed", "session_id", s.id, "error", err)
	s.observer.OnError(err)
	s.finish(voice.StatusError)
}

// finish runs the teardown sequence exactly once: stop capture, stop
// transport send/receive, close playback, release the device lock, merge
// recordings, then mark the terminal status. Every resource release is
// individually idempotent, so a mid-teardown fault cannot leave a device
// lock held or a connection half-open.
func (s *Session) finish(status voice.Status) {
	defer close(s.finished)

	if s.cancel != nil {
		s.cancel()
	}
	s.capture.SetPaused(true)
	s.capture.Release()
	if s.trans != nil {
		s.trans.Close()
	}
	s.playback.Close()

	endedAt := time.Now()
	s.final = &voice.VoiceSession{
		ID:              s.id,
		StartedAt:       s.startedAt,
		EndedAt:         &endedAt,
		Status:          status,
		Transcripts:     s.transcripts.Entries(),
		Recordings:      s.rec.Merge(s.startedAt, endedAt),
		DetectedIntents: s.intents.Detected(),
		Context:         s.sessCtx,
	}

	s.setStatus(status)
	s.log.Info("session finished", "session_id", s.id, "status", status,
		"transcripts", len(s.final.Transcripts), "intents", len(s.final.DetectedIntents))
}

// routeFrame handles every non-control inbound frame in arrival order.
// It runs on the transport's single receive goroutine, which is what
// keeps transcript appends and observer notifications ordered.
func (s *Session) routeFrame(frame InboundFrame) {
	switch f := frame.(type) {
	case ModelText:
		entry := s.transcripts.Append(voice.RoleAssistant, f.Text, nil, true)
		s.observer.OnTranscript(entry)

	case UserTranscript:
		entry := s.transcripts.Append(voice.RoleUser, f.Text, f.Confidence, f.Final)
		s.observer.OnTranscript(entry)
		s.observeIntent(f.Text)

	case ModelAudio:
		pcm, err := s.playback.Decode(f)
		if err != nil {
			s.log.Warn("inbound audio frame dropped", "session_id", s.id, "error", err)
			return
		}
		s.rec.Append(voice.RoleAssistant, pcm)
		s.observer.OnAudioResponse(pcm)
		s.playback.Enqueue(pcm)

	case Control:
		// Control frames terminate in the transport; nothing to route.
	}
}

func (s *Session) observeIntent(text string) {
	if kind, fresh := s.intents.Observe(text); fresh {
		s.log.Info("intent detected", "session_id", s.id, "intent", kind)
		s.observer.OnIntentDetected(kind)
	}
}

// setStatus transitions the lifecycle state and notifies the observer.
// Terminal states are sticky: once ENDED or ERROR is reached no further
// transition is applied.
func (s *Session) setStatus(to voice.Status) {
	s.mu.Lock()
	from := s.status
	if from.Terminal() || from == to {
		s.mu.Unlock()
		return
	}
	s.status = to
	s.mu.Unlock()

	s.log.Debug("status change", "session_id", s.id, "from", from, "to", to)
	s.observer.OnStatusChange(from, to)
}

// asInitError maps an adapter failure into the initialization taxonomy,
// preserving typed errors the adapter already classified.
func asInitError(op string, err error) error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{
		Kind:    ErrInitialization,
		Code:    CodeCapabilityUnavailable,
		Message: op + " failed",
		Err:     err,
	}
}
