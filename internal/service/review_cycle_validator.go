package service

import (
	"time"

	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

// ReviewCycleDates carries the candidate date windows of a cycle through
// validation.
type ReviewCycleDates struct {
	StartDate              time.Time
	EndDate                time.Time
	SelfReviewStartDate    time.Time
	SelfReviewEndDate      time.Time
	ManagerReviewStartDate time.Time
	ManagerReviewEndDate   time.Time
	CheckInStartDate       time.Time
	CheckInEndDate         time.Time
}

// Fixed validation messages, surfaced to end users verbatim.
const (
	msgEndBeforeStart        = "End date should be greater than start date"
	msgSelfEndBeforeStart    = "Self review End date should be greater than Self review start date"
	msgManagerEndBeforeStart = "Manager review End date should be greater than Manager review start date"
	msgCheckInEndBeforeStart = "Check-in End date should be greater than Check-in start date"
	msgReviewWindowsOutside  = "Self review and Manager review dates should be in between review cycle dates"
	msgCheckInOutside        = "Check-in dates should be in between review cycle dates"
)

// ValidateCycleDates checks the structural invariants of a candidate cycle
// before any persistence attempt. Rules run in a fixed order and the first
// failure wins.
func ValidateCycleDates(candidate ReviewCycleDates) error {
	if !candidate.EndDate.After(candidate.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, msgEndBeforeStart)
	}
	if !candidate.SelfReviewEndDate.After(candidate.SelfReviewStartDate) {
		return appErrors.Clone(appErrors.ErrValidation, msgSelfEndBeforeStart)
	}
	if !candidate.ManagerReviewEndDate.After(candidate.ManagerReviewStartDate) {
		return appErrors.Clone(appErrors.ErrValidation, msgManagerEndBeforeStart)
	}
	if !candidate.CheckInEndDate.After(candidate.CheckInStartDate) {
		return appErrors.Clone(appErrors.ErrValidation, msgCheckInEndBeforeStart)
	}
	if !windowWithinCycle(candidate.SelfReviewStartDate, candidate.SelfReviewEndDate, candidate) ||
		!windowWithinCycle(candidate.ManagerReviewStartDate, candidate.ManagerReviewEndDate, candidate) {
		return appErrors.Clone(appErrors.ErrValidation, msgReviewWindowsOutside)
	}
	if !windowWithinCycle(candidate.CheckInStartDate, candidate.CheckInEndDate, candidate) {
		return appErrors.Clone(appErrors.ErrValidation, msgCheckInOutside)
	}
	return nil
}

func windowWithinCycle(start, end time.Time, candidate ReviewCycleDates) bool {
	return !start.Before(candidate.StartDate) && !end.After(candidate.EndDate)
}
