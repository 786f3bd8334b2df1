// Package live implements the real-time voice conversation session manager.
//
// A Session owns one conversation end to end: it captures microphone audio,
// streams it over a single duplex connection to a remote conversational
// service, plays interleaved audio responses, assembles an ordered
// transcript, and tags conversational intent.
//
// # Architecture
//
//   - Session: the controller driving the lifecycle state machine
//   - capturePipeline: float samples -> 16-bit PCM -> fixed-size chunks
//   - transport: frames outbound audio/text, demultiplexes inbound frames
//   - playbackPipeline: FIFO scheduling of decoded assistant audio
//   - transcriptAssembler: append-only, time-ordered transcript
//   - recorder: per-role raw audio accumulation merged at session end
//
// # Data Flow
//
//	Mic → capture → transport.Send            transport.Frames → route
//	                                              │ audio → playback
//	                                              │ text  → transcript → intent
//
// # State Machine
//
//	CONNECTING → ACTIVE ⇄ PAUSED → ENDED
//	      └──────── any ─────────→ ERROR
//
// CONNECTING never resumes; ENDED and ERROR are terminal and both
// guarantee full resource release. Pausing suspends capture only, so any
// in-flight assistant audio still plays.
//
// # Usage
//
//	session := live.NewSession(live.DefaultSessionConfig(), dialer, mic, speaker, observer)
//	if err := session.Start(ctx, sessCtx); err != nil {
//	    // typed initialization failure; session is already torn down
//	}
//	session.SendText("My site won't publish")
//	snapshot, _ := session.End()
package live
