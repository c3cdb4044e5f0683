package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleCycle(publish bool) ReviewCycle {
	return ReviewCycle{
		ID:                     "cycle-1",
		OrganisationID:         "org-1",
		StartDate:              date(2024, time.January, 1),
		EndDate:                date(2024, time.March, 31),
		Publish:                publish,
		SelfReviewStartDate:    date(2024, time.January, 10),
		SelfReviewEndDate:      date(2024, time.January, 31),
		ManagerReviewStartDate: date(2024, time.February, 1),
		ManagerReviewEndDate:   date(2024, time.February, 20),
		CheckInStartDate:       date(2024, time.February, 21),
		CheckInEndDate:         date(2024, time.March, 15),
	}
}

func TestWithActiveFlagsInsideWindows(t *testing.T) {
	cycle := sampleCycle(true)

	resolved := cycle.WithActiveFlags(date(2024, time.January, 15))
	assert.True(t, resolved.IsReviewCycleActive)
	assert.True(t, resolved.IsSelfReviewActive)
	assert.False(t, resolved.IsManagerReviewActive)
	assert.False(t, resolved.IsCheckInActive)
	assert.False(t, resolved.IsSelfReviewDatePassed)

	resolved = cycle.WithActiveFlags(date(2024, time.February, 10))
	assert.True(t, resolved.IsManagerReviewActive)
	assert.False(t, resolved.IsSelfReviewActive)
	assert.True(t, resolved.IsSelfReviewDatePassed)
	assert.False(t, resolved.IsManagerReviewDatePassed)
}

func TestWithActiveFlagsWindowBoundariesInclusive(t *testing.T) {
	cycle := sampleCycle(true)

	onStart := cycle.WithActiveFlags(date(2024, time.January, 10))
	assert.True(t, onStart.IsSelfReviewActive)

	onEnd := cycle.WithActiveFlags(date(2024, time.January, 31))
	assert.True(t, onEnd.IsSelfReviewActive)
	assert.False(t, onEnd.IsSelfReviewDatePassed)

	dayAfter := cycle.WithActiveFlags(date(2024, time.February, 1))
	assert.False(t, dayAfter.IsSelfReviewActive)
	assert.True(t, dayAfter.IsSelfReviewDatePassed)
}

func TestWithActiveFlagsUnpublishedNeverActive(t *testing.T) {
	cycle := sampleCycle(false)

	resolved := cycle.WithActiveFlags(date(2024, time.January, 15))
	assert.False(t, resolved.IsReviewCycleActive)
	assert.False(t, resolved.IsSelfReviewActive)
	assert.False(t, resolved.IsManagerReviewActive)
	assert.False(t, resolved.IsCheckInActive)
}

func TestWithActiveFlagsPassedIgnoresPublish(t *testing.T) {
	cycle := sampleCycle(false)

	resolved := cycle.WithActiveFlags(date(2024, time.April, 1))
	assert.True(t, resolved.IsSelfReviewDatePassed)
	assert.True(t, resolved.IsManagerReviewDatePassed)
	assert.True(t, resolved.IsCheckInDatePassed)
}

func TestWithActiveFlagsIgnoresTimeOfDay(t *testing.T) {
	cycle := sampleCycle(true)

	lateEvening := time.Date(2024, time.January, 31, 23, 45, 0, 0, time.UTC)
	resolved := cycle.WithActiveFlags(lateEvening)
	assert.True(t, resolved.IsSelfReviewActive)
	assert.False(t, resolved.IsSelfReviewDatePassed)
}

func TestWithActiveFlagsIdempotent(t *testing.T) {
	cycle := sampleCycle(true)
	today := date(2024, time.February, 25)

	once := cycle.WithActiveFlags(today)
	twice := once.WithActiveFlags(today)
	assert.Equal(t, once, twice)
}

func TestSubmissionStarted(t *testing.T) {
	cycle := sampleCycle(true)

	assert.False(t, cycle.SubmissionStarted(date(2024, time.January, 20)))
	assert.True(t, cycle.SubmissionStarted(date(2024, time.February, 1)))
	assert.True(t, cycle.SubmissionStarted(date(2024, time.March, 15)))
	assert.False(t, cycle.SubmissionStarted(date(2024, time.March, 16)))

	unpublished := sampleCycle(false)
	assert.False(t, unpublished.SubmissionStarted(date(2024, time.February, 10)))
}

func TestDateOnly(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	instant := time.Date(2024, time.June, 5, 18, 30, 12, 0, loc)
	assert.Equal(t, time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC), DateOnly(instant))
}
