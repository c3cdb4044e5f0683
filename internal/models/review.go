package models

import "time"

// ReviewType identifies the review path a submission belongs to.
type ReviewType int

const (
	ReviewTypeSelf    ReviewType = 1
	ReviewTypeManager ReviewType = 2
	ReviewTypeCheckIn ReviewType = 3
)

// Label returns the user-facing name of the review type as used in deadline
// messages.
func (t ReviewType) Label() string {
	switch t {
	case ReviewTypeSelf:
		return "Self Review"
	case ReviewTypeManager:
		return "Manager Review"
	case ReviewTypeCheckIn:
		return "Check-in with Manager"
	default:
		return "Review"
	}
}

// Valid reports whether the type is one of the three known review paths.
func (t ReviewType) Valid() bool {
	return t == ReviewTypeSelf || t == ReviewTypeManager || t == ReviewTypeCheckIn
}

// ReviewDetails is the head record of one review submission: one row per
// (cycle, type, reviewed employee, reviewer) tuple. AverageRating holds the
// KRA-weighted composite score and is recomputed on every save.
type ReviewDetails struct {
	ID            string     `db:"id" json:"id"`
	ReviewCycleID string     `db:"review_cycle_id" json:"review_cycle_id"`
	ReviewTypeID  ReviewType `db:"review_type_id" json:"review_type_id"`
	ReviewToID    string     `db:"review_to_id" json:"review_to_id"`
	ReviewFromID  string     `db:"review_from_id" json:"review_from_id"`
	Draft         bool       `db:"draft" json:"draft"`
	Published     bool       `db:"published" json:"published"`
	AverageRating float64    `db:"average_rating" json:"average_rating"`
	SubmittedAt   *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	Reviews       []Review   `db:"-" json:"reviews,omitempty"`
}

// Review ties one KRA to a rating and commentary inside a ReviewDetails.
type Review struct {
	ID              string `db:"id" json:"id"`
	ReviewDetailsID string `db:"review_details_id" json:"review_details_id"`
	KRAID           string `db:"kra_id" json:"kra_id"`
	Rating          int    `db:"rating" json:"rating"`
	Review          string `db:"review" json:"review"`
}

// ReviewReportRow is one line of a cycle's review report export.
type ReviewReportRow struct {
	EmployeeName  string     `db:"employee_name"`
	ReviewerName  string     `db:"reviewer_name"`
	ReviewTypeID  ReviewType `db:"review_type_id"`
	Published     bool       `db:"published"`
	AverageRating float64    `db:"average_rating"`
}

// ReviewFilter selects review detail rows.
type ReviewFilter struct {
	ReviewCycleID string
	ReviewTypeID  ReviewType
	ReviewToID    string
	ReviewFromIDs []string
}
