package enums

import "fmt"

// WebhookOutcome records what happened to an inbound gateway webhook.
type WebhookOutcome string

const (
	WebhookOutcomeApplied   WebhookOutcome = "applied"
	WebhookOutcomeUnchanged WebhookOutcome = "unchanged"
	WebhookOutcomeIgnored   WebhookOutcome = "ignored"
	WebhookOutcomeNotFound  WebhookOutcome = "not_found"
	WebhookOutcomeStale     WebhookOutcome = "stale"
	WebhookOutcomeRejected  WebhookOutcome = "rejected"
	WebhookOutcomeFailed    WebhookOutcome = "failed"
)

var validWebhookOutcomes = []WebhookOutcome{
	WebhookOutcomeApplied,
	WebhookOutcomeUnchanged,
	WebhookOutcomeIgnored,
	WebhookOutcomeNotFound,
	WebhookOutcomeStale,
	WebhookOutcomeRejected,
	WebhookOutcomeFailed,
}

// String implements fmt.Stringer.
func (w WebhookOutcome) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WebhookOutcome.
func (w WebhookOutcome) IsValid() bool {
	for _, candidate := range validWebhookOutcomes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWebhookOutcome converts raw input into a WebhookOutcome.
func ParseWebhookOutcome(value string) (WebhookOutcome, error) {
	for _, candidate := range validWebhookOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook outcome %q", value)
}
