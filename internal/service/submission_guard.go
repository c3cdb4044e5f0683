package service

import (
	"fmt"

	"github.com/noah-isme/perf-review-api/internal/models"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

// deadlineMessage is the fixed rejection message per review type. The same
// wording is used whether the window is still ahead or already over.
func deadlineMessage(reviewType models.ReviewType) string {
	return fmt.Sprintf("Deadline for %s has passed. Sorry, you're late!", reviewType.Label())
}

// GuardSubmission decides whether a submission of the given type is permitted
// right now. The cycle must already have its activity flags resolved via
// WithActiveFlags against the organisation-local date.
func GuardSubmission(cycle models.ReviewCycle, reviewType models.ReviewType) error {
	var active bool
	switch reviewType {
	case models.ReviewTypeSelf:
		active = cycle.IsSelfReviewActive
	case models.ReviewTypeManager:
		active = cycle.IsManagerReviewActive
	case models.ReviewTypeCheckIn:
		active = cycle.IsCheckInActive
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown review type %d", reviewType))
	}

	if !active {
		return appErrors.Clone(appErrors.ErrDeadlinePassed, deadlineMessage(reviewType))
	}
	return nil
}
