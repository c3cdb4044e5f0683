package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/notify"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

type reviewRepository interface {
	FindDetails(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewDetails, error)
	FindDetailsByID(ctx context.Context, id string) (*models.ReviewDetails, error)
	SaveDetails(ctx context.Context, details *models.ReviewDetails) error
	GetKRAWeightages(ctx context.Context, cycleID string, kraIDs []string) ([]models.KRAWeightage, error)
	IsAllManagerReviewsComplete(ctx context.Context, employeeID, cycleID string) (bool, error)
	IsAllCheckInsComplete(ctx context.Context, employeeID, cycleID string) (bool, error)
}

type activeCycleProvider interface {
	GetActive(ctx context.Context, organisationID string, today time.Time) (*models.ReviewCycle, error)
}

type employeeReader interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	CurrentManagers(ctx context.Context, employeeID string) ([]models.ManagerMapping, error)
}

// ReviewItemRequest is one KRA rating within a submission.
type ReviewItemRequest struct {
	KRAID  string `json:"kra_id" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review"`
}

// SaveReviewRequest covers draft saves and final submissions of all three
// review types.
type SaveReviewRequest struct {
	OrganisationID string              `json:"organisation_id" validate:"required"`
	ReviewTypeID   models.ReviewType   `json:"review_type_id" validate:"required"`
	ReviewToID     string              `json:"review_to_id" validate:"required"`
	ReviewFromID   string              `json:"review_from_id" validate:"required"`
	Draft          bool                `json:"draft"`
	Published      bool                `json:"published"`
	Reviews        []ReviewItemRequest `json:"reviews" validate:"required,min=1,dive"`
}

// ReviewService orchestrates review submissions: deadline guard, weighted
// scoring, persistence and completion-triggered notification fan-out.
type ReviewService struct {
	repo      reviewRepository
	cycles    activeCycleProvider
	employees employeeReader
	audit     activityRecorder
	outbox    notify.Outbox
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(
	repo reviewRepository,
	cycles activeCycleProvider,
	employees employeeReader,
	audit activityRecorder,
	outbox notify.Outbox,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if outbox == nil {
		outbox = notify.NopOutbox{}
	}
	return &ReviewService{
		repo:      repo,
		cycles:    cycles,
		employees: employees,
		audit:     audit,
		outbox:    outbox,
		validator: validate,
		logger:    logger,
	}
}

// List returns review detail rows for a cycle/type/employee selection.
func (s *ReviewService) List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewDetails, error) {
	if !filter.ReviewTypeID.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown review type %d", filter.ReviewTypeID))
	}
	details, err := s.repo.FindDetails(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return details, nil
}

// Get returns one review submission by id.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.ReviewDetails, error) {
	details, err := s.repo.FindDetailsByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	return details, nil
}

// Save handles a draft save or final submission. The deadline guard runs
// against the active cycle resolved for the supplied organisation-local date;
// the weighted composite is recomputed on every save. Successful publishes of
// manager and check-in reviews fan out notifications via the outbox.
func (s *ReviewService) Save(ctx context.Context, req SaveReviewRequest, today time.Time, actor Actor) (*models.ReviewDetails, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if !req.ReviewTypeID.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown review type %d", req.ReviewTypeID))
	}

	cycle, err := s.cycles.GetActive(ctx, req.OrganisationID, today)
	if err != nil {
		return nil, err
	}
	if err := GuardSubmission(*cycle, req.ReviewTypeID); err != nil {
		return nil, err
	}

	reviews := make([]models.Review, len(req.Reviews))
	kraIDs := make([]string, len(req.Reviews))
	for i, item := range req.Reviews {
		reviews[i] = models.Review{KRAID: item.KRAID, Rating: item.Rating, Review: item.Review}
		kraIDs[i] = item.KRAID
	}

	weightages, err := s.repo.GetKRAWeightages(ctx, cycle.ID, kraIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load KRA weightages")
	}
	summary, err := WeightedScore(reviews, weightages)
	if err != nil {
		return nil, err
	}

	details := &models.ReviewDetails{
		ReviewCycleID: cycle.ID,
		ReviewTypeID:  req.ReviewTypeID,
		ReviewToID:    req.ReviewToID,
		ReviewFromID:  req.ReviewFromID,
		Draft:         req.Draft,
		Published:     req.Published,
		AverageRating: summary.FinalScore,
		Reviews:       reviews,
	}
	if req.Published {
		now := time.Now().UTC()
		details.SubmittedAt = &now
	}

	if err := s.repo.SaveDetails(ctx, details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review")
	}

	activity := models.ActivityReviewDrafted
	if req.Published {
		activity = models.ActivityReviewSubmitted
	}
	s.recordActivity(actor, activity, fmt.Sprintf("%s for employee %s in cycle %s",
		req.ReviewTypeID.Label(), req.ReviewToID, cycle.ID))

	if req.Published {
		s.fanOut(ctx, cycle, details)
	}
	return details, nil
}

// fanOut notifies the reviewed employee about a published manager or check-in
// review; once every expected review of that type is in, the employee's
// managers are notified as well. Fan-out is best-effort and never fails the
// committed save.
func (s *ReviewService) fanOut(ctx context.Context, cycle *models.ReviewCycle, details *models.ReviewDetails) {
	if details.ReviewTypeID == models.ReviewTypeSelf {
		return
	}

	employee, err := s.employees.FindByID(ctx, details.ReviewToID)
	if err != nil {
		s.logger.Warn("fan-out: reviewed employee lookup failed",
			zap.String("employee_id", details.ReviewToID), zap.Error(err))
		return
	}

	s.outbox.Enqueue(notify.Intent{
		Type:           notify.IntentSubmissionComplete,
		OrganisationID: cycle.OrganisationID,
		ReviewCycleID:  cycle.ID,
		EmployeeID:     employee.ID,
		ReviewerID:     details.ReviewFromID,
		Recipients:     []string{employee.Email},
		Subject:        fmt.Sprintf("Your %s has been submitted", details.ReviewTypeID.Label()),
		Body:           fmt.Sprintf("A %s about you was submitted in the current review cycle.", details.ReviewTypeID.Label()),
	})

	complete, err := s.isTypeComplete(ctx, details.ReviewTypeID, employee.ID, cycle.ID)
	if err != nil {
		s.logger.Warn("fan-out: completion check failed",
			zap.String("employee_id", employee.ID), zap.Error(err))
		return
	}
	if !complete {
		return
	}

	recipients := s.managerEmails(ctx, employee.ID)
	if len(recipients) == 0 {
		return
	}
	s.outbox.Enqueue(notify.Intent{
		Type:           notify.IntentAllReviewsComplete,
		OrganisationID: cycle.OrganisationID,
		ReviewCycleID:  cycle.ID,
		EmployeeID:     employee.ID,
		Recipients:     recipients,
		Subject:        fmt.Sprintf("All %ss completed for %s %s", details.ReviewTypeID.Label(), employee.FirstName, employee.LastName),
		Body:           fmt.Sprintf("Every expected %s for %s %s is now submitted.", details.ReviewTypeID.Label(), employee.FirstName, employee.LastName),
	})
}

func (s *ReviewService) isTypeComplete(ctx context.Context, reviewType models.ReviewType, employeeID, cycleID string) (bool, error) {
	switch reviewType {
	case models.ReviewTypeManager:
		return s.repo.IsAllManagerReviewsComplete(ctx, employeeID, cycleID)
	case models.ReviewTypeCheckIn:
		return s.repo.IsAllCheckInsComplete(ctx, employeeID, cycleID)
	default:
		return false, nil
	}
}

func (s *ReviewService) managerEmails(ctx context.Context, employeeID string) []string {
	mappings, err := s.employees.CurrentManagers(ctx, employeeID)
	if err != nil {
		s.logger.Warn("fan-out: manager lookup failed",
			zap.String("employee_id", employeeID), zap.Error(err))
		return nil
	}
	var emails []string
	for _, mapping := range mappings {
		manager, err := s.employees.FindByID(ctx, mapping.ManagerID)
		if err != nil {
			s.logger.Warn("fan-out: manager record lookup failed",
				zap.String("manager_id", mapping.ManagerID), zap.Error(err))
			continue
		}
		if manager.Email != "" {
			emails = append(emails, manager.Email)
		}
	}
	return emails
}

// recordActivity appends to the audit trail without ever failing the caller.
func (s *ReviewService) recordActivity(actor Actor, activity, description string) {
	if s.audit == nil || actor.ID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Record(ctx, &models.UserActivity{
			ActorID:     actor.ID,
			ModuleID:    models.ModuleReviews,
			Activity:    activity,
			Description: description,
			IPAddress:   actor.IPAddress,
		}); err != nil {
			s.logger.Warn("user activity record failed", zap.String("activity", activity), zap.Error(err))
		}
	}()
}
