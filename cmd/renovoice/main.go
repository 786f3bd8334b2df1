// Command renovoice runs an interactive live voice support session from
// the terminal.
//
// Usage:
//
//	renovoice [-config renovoice.yaml]
//
// Environment variables:
//
//	GEMINI_API_KEY - required unless a relay URL is configured
//
// Controls:
//
//	/t <text>  - Send a text message into the conversation
//	/p         - Pause audio capture
//	/r         - Resume audio capture
//	q          - End the session
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Brighttier/renova-voice/internal/config"
	"github.com/Brighttier/renova-voice/internal/dotenv"
	"github.com/Brighttier/renova-voice/internal/metrics"
	"github.com/Brighttier/renova-voice/pkg/voice"
	"github.com/Brighttier/renova-voice/pkg/voice/device"
	"github.com/Brighttier/renova-voice/pkg/voice/escalate"
	"github.com/Brighttier/renova-voice/pkg/voice/live"
	"github.com/Brighttier/renova-voice/pkg/voice/providers/gemini"
	"github.com/Brighttier/renova-voice/pkg/voice/providers/relay"
)

func main() {
	configPath := flag.String("config", "renovoice.yaml", "path to the YAML configuration file")
	model := flag.String("model", "", "override the configured model")
	relayURL := flag.String("relay", "", "override the configured relay URL")
	flag.Parse()

	_ = dotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *model != "" {
		cfg.Session.Model = *model
	}
	if *relayURL != "" {
		cfg.Relay.URL = *relayURL
	}

	log := newLogger(cfg.Logging)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("session failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	collector := metrics.NewCollector()
	if cfg.Metrics.Enabled {
		go func() {
			if err := collector.Serve(cfg.Metrics.Address); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	format := live.AudioFormat{SampleRateHz: cfg.Session.SampleRateHz, Channels: cfg.Session.Channels}

	mic := device.NewMicrophone(format)
	speaker, err := device.NewSpeaker(format)
	if err != nil {
		return err
	}

	dialer := pickDialer(cfg)

	sessionCfg := live.SessionConfig{
		Model:   cfg.Session.Model,
		Voice:   cfg.Session.Voice,
		Format:  format,
		ChunkMs: cfg.Session.ChunkMs,
		Logger:  log,
	}
	for _, m := range cfg.Session.Modalities {
		sessionCfg.Modalities = append(sessionCfg.Modalities, live.Modality(m))
	}

	observer := metrics.NewSessionObserver(collector, &consoleObserver{})
	session := live.NewSession(sessionCfg, dialer, mic, speaker, observer)

	sessCtx := voice.SessionContext{UserID: os.Getenv("USER")}
	if err := session.Start(ctx, sessCtx); err != nil {
		return err
	}

	fmt.Println("Session active. Speak naturally, or type commands.")
	fmt.Println("Commands: /t <text>, /p (pause), /r (resume), q (quit)")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

loop:
	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if done := handleCommand(session, line); done {
				break loop
			}
		}
	}

	final, err := session.End()
	if err != nil {
		return err
	}
	report(final)

	if cfg.Escalation.Enabled {
		if err := forward(cfg.Escalation, final, log); err != nil {
			log.Error("escalation forward failed", "error", err)
		}
	}
	return nil
}

// pickDialer prefers the relay when its URL is configured, otherwise
// dials the model API directly.
func pickDialer(cfg *config.Config) live.Dialer {
	if cfg.Relay.URL != "" {
		var header http.Header
		if cfg.Relay.BearerToken != "" {
			header = http.Header{"Authorization": []string{"Bearer " + cfg.Relay.BearerToken}}
		}
		return &relay.Dialer{URL: cfg.Relay.URL, Header: header}
	}
	return &gemini.Dialer{APIKey: cfg.Gemini.APIKey}
}

// handleCommand processes one input line; reports true to quit.
func handleCommand(session *live.Session, line string) bool {
	input := strings.TrimSpace(line)
	switch {
	case input == "":
		return false
	case strings.EqualFold(input, "q"):
		return true
	case strings.HasPrefix(input, "/t "):
		text := strings.TrimPrefix(input, "/t ")
		if err := session.SendText(text); err != nil {
			fmt.Printf("[ERROR] Failed to send text: %v\n", err)
		}
	case input == "/p":
		if err := session.Pause(); err != nil {
			fmt.Printf("[ERROR] Pause: %v\n", err)
		} else {
			fmt.Println("[PAUSED] Microphone muted")
		}
	case input == "/r":
		if err := session.Resume(); err != nil {
			fmt.Printf("[ERROR] Resume: %v\n", err)
		} else {
			fmt.Println("[ACTIVE] Microphone live")
		}
	default:
		fmt.Println("[INFO] Commands: /t <text>, /p, /r, q")
	}
	return false
}

func report(final *voice.VoiceSession) {
	fmt.Printf("\nSession %s ended with status %s after %s.\n",
		final.ID, final.Status, final.Duration().Round(time.Second))
	fmt.Printf("Transcript entries: %d, detected intents: %d\n",
		len(final.Transcripts), len(final.DetectedIntents))
}

func forward(cfg config.EscalationConfig, final *voice.VoiceSession, log *slog.Logger) error {
	forwarder, err := escalate.NewKafkaForwarder(escalate.KafkaConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})
	if err != nil {
		return err
	}
	defer forwarder.Close()

	fc := escalate.Package(final, voice.PriorityNormal, "")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := forwarder.Forward(ctx, fc); err != nil {
		return err
	}
	log.Info("conversation forwarded", "session_id", final.ID, "summary", fc.Summary)
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// consoleObserver prints conversation events as they happen.
type consoleObserver struct{}

func (consoleObserver) OnStatusChange(from, to voice.Status) {
	fmt.Printf("[STATUS] %s -> %s\n", from, to)
}

func (consoleObserver) OnTranscript(entry voice.TranscriptEntry) {
	fmt.Printf("[%s] %s\n", strings.ToUpper(string(entry.Role)), entry.Text)
}

func (consoleObserver) OnAudioResponse(pcm []byte) {}

func (consoleObserver) OnIntentDetected(kind voice.IntentKind) {
	fmt.Printf("[INTENT] %s\n", kind)
}

func (consoleObserver) OnError(err error) {
	fmt.Printf("[ERROR] %v\n", err)
}
