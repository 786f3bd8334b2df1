package voice

// IntentKind is a coarse category of what a user utterance is about,
// used for tagging and escalation routing.
type IntentKind string

const (
	// IntentNone is the zero value for text that matches no rule.
	IntentNone IntentKind = ""

	IntentPublishingIssue IntentKind = "publishing_issue"
	IntentDNSDomainIssue  IntentKind = "dns_domain_issue"
	IntentSSLIssue        IntentKind = "ssl_issue"
	IntentBillingQuestion IntentKind = "billing_question"
	IntentHowTo           IntentKind = "how_to"
	IntentBugReport       IntentKind = "bug_report"
	IntentGeneralQuestion IntentKind = "general_question"
)

// String returns the wire name of the intent.
func (k IntentKind) String() string { return string(k) }
