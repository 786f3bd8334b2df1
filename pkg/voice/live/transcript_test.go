package live

import (
	"testing"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

func TestTranscriptAssemblerPreservesOrder(t *testing.T) {
	t.Parallel()
	a := newTranscriptAssembler()

	conf := 0.92
	a.Append(voice.RoleUser, "hello", &conf, false)
	a.Append(voice.RoleAssistant, "hi there", nil, true)
	a.Append(voice.RoleUser, "hello there", &conf, true)

	entries := a.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}

	wantTexts := []string{"hello", "hi there", "hello there"}
	for i, want := range wantTexts {
		if entries[i].Text != want {
			t.Errorf("entry %d text = %q, want %q", i, entries[i].Text, want)
		}
	}
	if entries[0].IsFinal {
		t.Error("interim entry marked final")
	}
	if !entries[2].IsFinal {
		t.Error("final entry not marked final")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Errorf("entry %d timestamp precedes entry %d", i, i-1)
		}
	}
}

func TestTranscriptAssemblerInterimKeptAlongsideFinal(t *testing.T) {
	t.Parallel()
	a := newTranscriptAssembler()

	// The source re-transmits the refined utterance; both versions stay.
	a.Append(voice.RoleUser, "my site is", nil, false)
	a.Append(voice.RoleUser, "my site is down", nil, true)

	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (no reconciliation)", a.Len())
	}
}

func TestTranscriptAssemblerEntriesIsACopy(t *testing.T) {
	t.Parallel()
	a := newTranscriptAssembler()
	a.Append(voice.RoleUser, "original", nil, true)

	snapshot := a.Entries()
	snapshot[0].Text = "mutated"

	if got := a.Entries()[0].Text; got != "original" {
		t.Fatalf("internal entry mutated via snapshot: %q", got)
	}
}

func TestTranscriptAssemblerAssignsUniqueIDs(t *testing.T) {
	t.Parallel()
	a := newTranscriptAssembler()
	first := a.Append(voice.RoleUser, "one", nil, true)
	second := a.Append(voice.RoleUser, "two", nil, true)
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids not unique: %q vs %q", first.ID, second.ID)
	}
}
