package notify

import "context"

// IntentType enumerates the notification events the review core emits.
type IntentType string

const (
	// IntentPhaseStarted announces a new cycle phase to the organisation.
	IntentPhaseStarted IntentType = "PHASE_STARTED"
	// IntentSubmissionComplete tells an employee a review about them was
	// published.
	IntentSubmissionComplete IntentType = "SUBMISSION_COMPLETE"
	// IntentAllReviewsComplete tells an employee's managers that every
	// expected review for the employee is now in.
	IntentAllReviewsComplete IntentType = "ALL_REVIEWS_COMPLETE"
	// IntentCycleDatesChanged tells affected employees the cycle windows
	// moved.
	IntentCycleDatesChanged IntentType = "CYCLE_DATES_CHANGED"
)

// Intent is one notification to be delivered. Intents are enqueued by the
// services after a successful write and dispatched asynchronously; delivery
// failures never affect the committed operation.
type Intent struct {
	Type           IntentType `json:"type"`
	OrganisationID string     `json:"organisation_id"`
	ReviewCycleID  string     `json:"review_cycle_id,omitempty"`
	EmployeeID     string     `json:"employee_id,omitempty"`
	ReviewerID     string     `json:"reviewer_id,omitempty"`
	Phase          string     `json:"phase,omitempty"`
	Recipients     []string   `json:"recipients,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	Body           string     `json:"body,omitempty"`
}

// Outbox accepts notification intents without blocking the caller.
type Outbox interface {
	Enqueue(intent Intent)
}

// Sender delivers one intent over a single channel (email, Slack, ...).
type Sender interface {
	Name() string
	Send(ctx context.Context, intent Intent) error
}

// NopOutbox drops every intent. Used when notifications are disabled and in
// tests that do not assert on fan-out.
type NopOutbox struct{}

// Enqueue implements Outbox.
func (NopOutbox) Enqueue(Intent) {}
