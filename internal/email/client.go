// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation.
package email

import "context"

// HighRiskAlertParams holds the data for the alert sent to the reviewing
// doctor when an assessment lands in the high tier.
type HighRiskAlertParams struct {
	To         string // doctor's email address
	PatientRef string // clinic-local patient reference; never PHI beyond this
	TotalScore int
	Advice     string
}

// ScoredParams holds the data for the "assessment scored" notification.
type ScoredParams struct {
	To          string
	PatientRef  string
	TierLabel   string // caregiver-facing tier name, e.g. "Moderate"
	AccessToken string // opaque token — inserted into the result URL
}

// Sender is the interface the worker uses to send email. Tests inject a stub
// that records calls without hitting the network.
type Sender interface {
	// SendHighRiskAlert notifies the doctor of a high-tier result. Called by
	// the worker after PersistScoredAssessment succeeds.
	SendHighRiskAlert(ctx context.Context, p HighRiskAlertParams) error

	// SendScored sends the routine "results are ready" notification with the
	// access token link.
	SendScored(ctx context.Context, p ScoredParams) error
}
