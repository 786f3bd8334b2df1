// Package intent tags user utterances with a coarse support taxonomy.
// Classification is a pure function over a fixed, ordered rule set; the
// first matching rule wins and matching is case-insensitive.
package intent

import (
	"strings"
	"sync"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

type rule struct {
	kind     voice.IntentKind
	keywords []string
}

// rules are evaluated top to bottom. Order matters: "how do I publish my
// site?" is a publishing issue, not a how-to, because the publishing rule
// comes first.
var rules = []rule{
	{voice.IntentPublishingIssue, []string{"publish", "unpublish", "go live", "deploy", "site is down", "site isn't live", "site not live"}},
	{voice.IntentDNSDomainIssue, []string{"dns", "domain", "nameserver", "name server", "cname", "a record", "propagat", "subdomain"}},
	{voice.IntentSSLIssue, []string{"ssl", "https", "certificate", "not secure", "tls", "padlock"}},
	{voice.IntentBillingQuestion, []string{"billing", "invoice", "charge", "refund", "subscription", "payment", "price", "upgrade my plan", "downgrade"}},
	{voice.IntentHowTo, []string{"how do i", "how can i", "how to", "where do i", "where can i", "tutorial", "guide", "walk me through"}},
	{voice.IntentBugReport, []string{"bug", "broken", "crash", "doesn't work", "does not work", "not working", "glitch", "error message", "stopped working"}},
}

// questionStarters trigger the general-question fallback when no specific
// rule matched.
var questionStarters = []string{"what", "why", "when", "who", "which", "can ", "could ", "do ", "does ", "is ", "are "}

// Classify maps an utterance to its intent kind. Text matching no rule
// yields IntentNone, which callers treat as "no intent".
func Classify(text string) voice.IntentKind {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return voice.IntentNone
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.kind
			}
		}
	}

	if strings.Contains(t, "?") {
		return voice.IntentGeneralQuestion
	}
	for _, prefix := range questionStarters {
		if strings.HasPrefix(t, prefix) {
			return voice.IntentGeneralQuestion
		}
	}
	return voice.IntentNone
}

// Tracker maintains the per-session, insertion-ordered set of detected
// intents. A given kind is reported exactly once per session.
type Tracker struct {
	mu    sync.Mutex
	seen  map[voice.IntentKind]struct{}
	order []voice.IntentKind
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[voice.IntentKind]struct{})}
}

// Observe classifies the text and records the result. The boolean is true
// only the first time a kind appears in the session.
func (t *Tracker) Observe(text string) (voice.IntentKind, bool) {
	kind := Classify(text)
	if kind == voice.IntentNone {
		return kind, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.seen[kind]; dup {
		return kind, false
	}
	t.seen[kind] = struct{}{}
	t.order = append(t.order, kind)
	return kind, true
}

// Detected returns the insertion-ordered set of detected intents.
func (t *Tracker) Detected() []voice.IntentKind {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]voice.IntentKind, len(t.order))
	copy(out, t.order)
	return out
}
