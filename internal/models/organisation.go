package models

import "time"

// Organisation models a tenant. Timezone is the IANA zone used to resolve the
// organisation-local calendar date for review cycle window checks.
type Organisation struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Timezone  string    `db:"timezone" json:"timezone"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Today returns the organisation-local calendar date for the given instant,
// truncated to midnight in the organisation's zone. Falls back to UTC when the
// zone is unknown.
func (o Organisation) Today(now time.Time) time.Time {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
