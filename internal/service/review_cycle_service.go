package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/notify"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

type reviewCycleRepository interface {
	List(ctx context.Context, filter models.ReviewCycleFilter) ([]models.ReviewCycle, int, error)
	FindByID(ctx context.Context, id string) (*models.ReviewCycle, error)
	FindPublished(ctx context.Context, organisationID string) (*models.ReviewCycle, error)
	Create(ctx context.Context, cycle *models.ReviewCycle) error
	Update(ctx context.Context, cycle *models.ReviewCycle) error
	Unpublish(ctx context.Context, id string) error
}

type kraCompletenessReader interface {
	CountKRAsWithoutActiveKPI(ctx context.Context, organisationID string) (int, error)
	CountDesignationsMissingKPI(ctx context.Context, organisationID string) (int, error)
}

type cycleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type activityRecorder interface {
	Record(ctx context.Context, activity *models.UserActivity) error
}

type organisationEmployeeLister interface {
	ListActiveByOrganisation(ctx context.Context, organisationID string) ([]models.Employee, error)
}

// Actor identifies who triggered an operation, for the audit trail.
type Actor struct {
	ID        string
	IPAddress string
}

// ReviewCycleRequest carries all date fields and the publish flag for create
// and update; updates are a full replace.
type ReviewCycleRequest struct {
	OrganisationID         string    `json:"organisation_id" validate:"required"`
	StartDate              time.Time `json:"start_date" validate:"required"`
	EndDate                time.Time `json:"end_date" validate:"required"`
	Publish                bool      `json:"publish"`
	SelfReviewStartDate    time.Time `json:"self_review_start_date" validate:"required"`
	SelfReviewEndDate      time.Time `json:"self_review_end_date" validate:"required"`
	ManagerReviewStartDate time.Time `json:"manager_review_start_date" validate:"required"`
	ManagerReviewEndDate   time.Time `json:"manager_review_end_date" validate:"required"`
	CheckInStartDate       time.Time `json:"check_in_start_date" validate:"required"`
	CheckInEndDate         time.Time `json:"check_in_end_date" validate:"required"`
	NotifyEmployees        bool      `json:"notify_employees"`
}

func (r ReviewCycleRequest) dates() ReviewCycleDates {
	return ReviewCycleDates{
		StartDate:              r.StartDate,
		EndDate:                r.EndDate,
		SelfReviewStartDate:    r.SelfReviewStartDate,
		SelfReviewEndDate:      r.SelfReviewEndDate,
		ManagerReviewStartDate: r.ManagerReviewStartDate,
		ManagerReviewEndDate:   r.ManagerReviewEndDate,
		CheckInStartDate:       r.CheckInStartDate,
		CheckInEndDate:         r.CheckInEndDate,
	}
}

// ReviewCycleService orchestrates cycle lifecycle: validation, KRA/KPI
// completeness preconditions, persistence, conflict surfacing, cache
// invalidation and notification fan-out.
type ReviewCycleService struct {
	repo      reviewCycleRepository
	kras      kraCompletenessReader
	employees organisationEmployeeLister
	cache     cycleCache
	cacheTTL  time.Duration
	audit     activityRecorder
	outbox    notify.Outbox
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewCycleService constructs the cycle service.
func NewReviewCycleService(
	repo reviewCycleRepository,
	kras kraCompletenessReader,
	employees organisationEmployeeLister,
	cache cycleCache,
	cacheTTL time.Duration,
	audit activityRecorder,
	outbox notify.Outbox,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReviewCycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if outbox == nil {
		outbox = notify.NopOutbox{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReviewCycleService{
		repo:      repo,
		kras:      kras,
		employees: employees,
		cache:     cache,
		cacheTTL:  cacheTTL,
		audit:     audit,
		outbox:    outbox,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated cycles for an organisation, flags resolved against
// the supplied organisation-local date.
func (s *ReviewCycleService) List(ctx context.Context, filter models.ReviewCycleFilter, today time.Time) ([]models.ReviewCycle, *models.Pagination, error) {
	cycles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list review cycles")
	}
	for i := range cycles {
		cycles[i] = cycles[i].WithActiveFlags(today)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return cycles, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one cycle with flags resolved.
func (s *ReviewCycleService) Get(ctx context.Context, id string, today time.Time) (*models.ReviewCycle, error) {
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review cycle")
	}
	resolved := cycle.WithActiveFlags(today)
	return &resolved, nil
}

// GetActive returns the organisation's published cycle with flags resolved
// against today, reading through the cache.
func (s *ReviewCycleService) GetActive(ctx context.Context, organisationID string, today time.Time) (*models.ReviewCycle, error) {
	cycle, err := s.findPublished(ctx, organisationID)
	if err != nil {
		return nil, err
	}
	resolved := cycle.WithActiveFlags(today)
	return &resolved, nil
}

func (s *ReviewCycleService) findPublished(ctx context.Context, organisationID string) (*models.ReviewCycle, error) {
	key := cacheKeyActiveCycle(organisationID)
	if s.cache != nil {
		var cached models.ReviewCycle
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("active cycle cache read failed", zap.Error(err))
		}
	}

	cycle, err := s.repo.FindPublished(ctx, organisationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoActiveCycle, "no published review cycle for organisation")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active review cycle")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cycle, s.cacheTTL); err != nil {
			s.logger.Warn("active cycle cache write failed", zap.Error(err))
		}
	}
	return cycle, nil
}

// Create validates, checks KRA/KPI completeness, persists and fans out the
// phase-start notification when the cycle is published. Order matters:
// structural validation always runs before any repository call.
func (s *ReviewCycleService) Create(ctx context.Context, req ReviewCycleRequest, actor Actor) (*models.ReviewCycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review cycle payload")
	}
	if err := ValidateCycleDates(req.dates()); err != nil {
		return nil, err
	}
	if err := s.checkKRACompleteness(ctx, req.OrganisationID); err != nil {
		return nil, err
	}

	cycle := cycleFromRequest(req)
	if err := s.repo.Create(ctx, cycle); err != nil {
		return nil, s.classifyPersistError(err, "failed to create review cycle")
	}

	s.invalidateActiveCycle(ctx, req.OrganisationID)
	s.recordActivity(actor, models.ModuleReviewCycle, models.ActivityCycleCreated,
		fmt.Sprintf("Created review cycle %s", cycle.ID))

	if cycle.Publish {
		s.notifyPhaseStarted(ctx, cycle)
	}
	return cycle, nil
}

// Update replaces a cycle's dates and publish flag, with the same validation
// and conflict handling as Create. When NotifyEmployees is set the affected
// employees are told the dates changed.
func (s *ReviewCycleService) Update(ctx context.Context, id string, req ReviewCycleRequest, actor Actor) (*models.ReviewCycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review cycle payload")
	}
	if err := ValidateCycleDates(req.dates()); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review cycle")
	}

	cycle := cycleFromRequest(req)
	cycle.ID = existing.ID
	cycle.OrganisationID = existing.OrganisationID
	if err := s.repo.Update(ctx, cycle); err != nil {
		return nil, s.classifyPersistError(err, "failed to update review cycle")
	}

	s.invalidateActiveCycle(ctx, cycle.OrganisationID)
	s.recordActivity(actor, models.ModuleReviewCycle, models.ActivityCycleUpdated,
		fmt.Sprintf("Updated review cycle %s", cycle.ID))

	if req.NotifyEmployees {
		s.notifyDatesChanged(ctx, cycle)
	}
	return cycle, nil
}

// Unpublish flips the publish flag off; no date validation applies.
func (s *ReviewCycleService) Unpublish(ctx context.Context, id string, actor Actor) error {
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review cycle")
	}

	if err := s.repo.Unpublish(ctx, id); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unpublish review cycle")
	}

	s.invalidateActiveCycle(ctx, cycle.OrganisationID)
	s.recordActivity(actor, models.ModuleReviewCycle, models.ActivityCycleUnpublish,
		fmt.Sprintf("Unpublished review cycle %s", id))
	return nil
}

// IsReviewSubmissionStarted reports whether the date falls inside
// [manager review start, check-in end] of the organisation's published cycle.
// Used to block manager reassignment once submissions are underway.
func (s *ReviewCycleService) IsReviewSubmissionStarted(ctx context.Context, organisationID string, date time.Time) (bool, error) {
	cycle, err := s.findPublished(ctx, organisationID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoActiveCycle) {
			return false, nil
		}
		return false, err
	}
	return cycle.SubmissionStarted(date), nil
}

func (s *ReviewCycleService) checkKRACompleteness(ctx context.Context, organisationID string) error {
	missingKPI, err := s.kras.CountKRAsWithoutActiveKPI(ctx, organisationID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check KRA completeness")
	}
	if missingKPI > 0 {
		return appErrors.ErrKRAWithoutKPI
	}

	designationGaps, err := s.kras.CountDesignationsMissingKPI(ctx, organisationID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check designation completeness")
	}
	if designationGaps > 0 {
		return appErrors.ErrDesignationGap
	}
	return nil
}

// classifyPersistError keeps typed conflicts intact and wraps everything else
// as internal.
func (s *ReviewCycleService) classifyPersistError(err error, message string) error {
	if errors.Is(err, appErrors.ErrCycleOverlap) || errors.Is(err, appErrors.ErrActiveCycleConflict) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *ReviewCycleService) invalidateActiveCycle(ctx context.Context, organisationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyActiveCycle(organisationID)); err != nil {
		s.logger.Warn("active cycle cache invalidation failed",
			zap.String("organisation_id", organisationID), zap.Error(err))
	}
}

// recordActivity appends to the audit trail without ever failing the caller.
func (s *ReviewCycleService) recordActivity(actor Actor, moduleID int, activity, description string) {
	if s.audit == nil || actor.ID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.Record(ctx, &models.UserActivity{
			ActorID:     actor.ID,
			ModuleID:    moduleID,
			Activity:    activity,
			Description: description,
			IPAddress:   actor.IPAddress,
		}); err != nil {
			s.logger.Warn("user activity record failed", zap.String("activity", activity), zap.Error(err))
		}
	}()
}

func (s *ReviewCycleService) notifyPhaseStarted(ctx context.Context, cycle *models.ReviewCycle) {
	recipients := s.organisationRecipients(ctx, cycle.OrganisationID)
	s.outbox.Enqueue(notify.Intent{
		Type:           notify.IntentPhaseStarted,
		OrganisationID: cycle.OrganisationID,
		ReviewCycleID:  cycle.ID,
		Phase:          "Review Cycle",
		Recipients:     recipients,
		Subject:        "A new review cycle has started",
		Body: fmt.Sprintf("The review cycle runs from %s to %s. Self review opens on %s.",
			cycle.StartDate.Format("02 Jan 2006"), cycle.EndDate.Format("02 Jan 2006"),
			cycle.SelfReviewStartDate.Format("02 Jan 2006")),
	})
}

func (s *ReviewCycleService) notifyDatesChanged(ctx context.Context, cycle *models.ReviewCycle) {
	recipients := s.organisationRecipients(ctx, cycle.OrganisationID)
	s.outbox.Enqueue(notify.Intent{
		Type:           notify.IntentCycleDatesChanged,
		OrganisationID: cycle.OrganisationID,
		ReviewCycleID:  cycle.ID,
		Recipients:     recipients,
		Subject:        "Review cycle dates have changed",
		Body: fmt.Sprintf("The review cycle now runs from %s to %s.",
			cycle.StartDate.Format("02 Jan 2006"), cycle.EndDate.Format("02 Jan 2006")),
	})
}

func (s *ReviewCycleService) organisationRecipients(ctx context.Context, organisationID string) []string {
	if s.employees == nil {
		return nil
	}
	employees, err := s.employees.ListActiveByOrganisation(ctx, organisationID)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipients",
			zap.String("organisation_id", organisationID), zap.Error(err))
		return nil
	}
	recipients := make([]string, 0, len(employees))
	for _, employee := range employees {
		if employee.Email != "" {
			recipients = append(recipients, employee.Email)
		}
	}
	return recipients
}

func cacheKeyActiveCycle(organisationID string) string {
	return fmt.Sprintf("review_cycle:active:%s", organisationID)
}

func cycleFromRequest(req ReviewCycleRequest) *models.ReviewCycle {
	return &models.ReviewCycle{
		OrganisationID:         req.OrganisationID,
		StartDate:              models.DateOnly(req.StartDate),
		EndDate:                models.DateOnly(req.EndDate),
		Publish:                req.Publish,
		SelfReviewStartDate:    models.DateOnly(req.SelfReviewStartDate),
		SelfReviewEndDate:      models.DateOnly(req.SelfReviewEndDate),
		ManagerReviewStartDate: models.DateOnly(req.ManagerReviewStartDate),
		ManagerReviewEndDate:   models.DateOnly(req.ManagerReviewEndDate),
		CheckInStartDate:       models.DateOnly(req.CheckInStartDate),
		CheckInEndDate:         models.DateOnly(req.CheckInEndDate),
	}
}
