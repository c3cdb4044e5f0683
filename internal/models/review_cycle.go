package models

import "time"

// ReviewCycle models one performance review period for an organisation. The
// cycle span contains three sub-windows: self review, manager review and
// check-in with manager. All date columns are calendar dates; the Is* fields
// are derived per request via WithActiveFlags and never persisted.
type ReviewCycle struct {
	ID             string    `db:"id" json:"id"`
	OrganisationID string    `db:"organisation_id" json:"organisation_id"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	Publish        bool      `db:"publish" json:"publish"`

	SelfReviewStartDate    time.Time `db:"self_review_start_date" json:"self_review_start_date"`
	SelfReviewEndDate      time.Time `db:"self_review_end_date" json:"self_review_end_date"`
	ManagerReviewStartDate time.Time `db:"manager_review_start_date" json:"manager_review_start_date"`
	ManagerReviewEndDate   time.Time `db:"manager_review_end_date" json:"manager_review_end_date"`
	CheckInStartDate       time.Time `db:"check_in_start_date" json:"check_in_start_date"`
	CheckInEndDate         time.Time `db:"check_in_end_date" json:"check_in_end_date"`

	LastModified time.Time `db:"last_modified" json:"last_modified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	IsReviewCycleActive   bool `db:"-" json:"is_review_cycle_active"`
	IsSelfReviewActive    bool `db:"-" json:"is_self_review_active"`
	IsManagerReviewActive bool `db:"-" json:"is_manager_review_active"`
	IsCheckInActive       bool `db:"-" json:"is_check_in_with_manager_active"`

	IsSelfReviewDatePassed    bool `db:"-" json:"is_self_review_date_passed"`
	IsManagerReviewDatePassed bool `db:"-" json:"is_manager_review_date_passed"`
	IsCheckInDatePassed       bool `db:"-" json:"is_check_in_with_manager_date_passed"`
}

// DateOnly truncates an instant to its calendar date at UTC midnight. Cycle
// window arithmetic compares dates, never times of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dateWithin reports whether day falls inside [start, end], endpoints included.
func dateWithin(day, start, end time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}

// datePassed reports whether day is strictly after end.
func datePassed(day, end time.Time) bool {
	return DateOnly(day).After(DateOnly(end))
}

// WithActiveFlags returns a copy of the cycle with activity and deadline flags
// resolved against the supplied organisation-local date. Active flags require
// the cycle to be published; passed flags depend on the date alone. The
// transform is pure and idempotent.
func (c ReviewCycle) WithActiveFlags(today time.Time) ReviewCycle {
	c.IsReviewCycleActive = c.Publish && dateWithin(today, c.StartDate, c.EndDate)
	c.IsSelfReviewActive = c.Publish && dateWithin(today, c.SelfReviewStartDate, c.SelfReviewEndDate)
	c.IsManagerReviewActive = c.Publish && dateWithin(today, c.ManagerReviewStartDate, c.ManagerReviewEndDate)
	c.IsCheckInActive = c.Publish && dateWithin(today, c.CheckInStartDate, c.CheckInEndDate)

	c.IsSelfReviewDatePassed = datePassed(today, c.SelfReviewEndDate)
	c.IsManagerReviewDatePassed = datePassed(today, c.ManagerReviewEndDate)
	c.IsCheckInDatePassed = datePassed(today, c.CheckInEndDate)
	return c
}

// SubmissionStarted reports whether reviews are already underway on the given
// date, i.e. the date falls between the manager review start and the check-in
// end of a published cycle. Used to block manager reassignment mid-cycle.
func (c ReviewCycle) SubmissionStarted(date time.Time) bool {
	return c.Publish && dateWithin(date, c.ManagerReviewStartDate, c.CheckInEndDate)
}

// ReviewCycleFilter defines filters supported by cycle list endpoints.
type ReviewCycleFilter struct {
	OrganisationID string
	Publish        *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
