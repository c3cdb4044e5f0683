package models

import "time"

// Module identifiers recorded alongside user activity.
const (
	ModuleReviewCycle = 11
	ModuleReviews     = 12
)

// Activity constants recorded in the user activity trail.
const (
	ActivityCycleCreated    = "REVIEW_CYCLE_CREATED"
	ActivityCycleUpdated    = "REVIEW_CYCLE_UPDATED"
	ActivityCycleUnpublish  = "REVIEW_CYCLE_UNPUBLISHED"
	ActivityReviewSubmitted = "REVIEW_SUBMITTED"
	ActivityReviewDrafted   = "REVIEW_DRAFT_SAVED"
)

// UserActivity is one best-effort audit trail record. Writes never block or
// fail the operation that produced them.
type UserActivity struct {
	ID          string    `db:"id" json:"id"`
	ActorID     string    `db:"actor_id" json:"actor_id"`
	ModuleID    int       `db:"module_id" json:"module_id"`
	Activity    string    `db:"activity" json:"activity"`
	Description string    `db:"description" json:"description"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
