package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/perf-review-api/internal/models"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

const reviewCycleColumns = `id, organisation_id, start_date, end_date, publish,
	self_review_start_date, self_review_end_date,
	manager_review_start_date, manager_review_end_date,
	check_in_start_date, check_in_end_date,
	last_modified, created_at`

// ReviewCycleRepository handles persistence for review cycles. Uniqueness of
// the published cycle and non-overlap of cycle ranges are enforced by database
// constraints; this repository translates those violations into typed domain
// errors so callers never string-match raw driver output.
type ReviewCycleRepository struct {
	db *sqlx.DB
}

// NewReviewCycleRepository instantiates a review cycle repository.
func NewReviewCycleRepository(db *sqlx.DB) *ReviewCycleRepository {
	return &ReviewCycleRepository{db: db}
}

// classifyCycleConflict maps known constraint violations onto domain errors.
// Anything unrecognised propagates unchanged.
func classifyCycleConflict(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		marker := pqErr.Constraint
		if marker == "" {
			marker = pqErr.Message
		}
		switch {
		case strings.Contains(marker, "no_overlap"), strings.Contains(marker, "overlap_review_cycle"):
			return appErrors.Wrap(err, appErrors.ErrCycleOverlap.Code, appErrors.ErrCycleOverlap.Status, appErrors.ErrCycleOverlap.Message)
		case strings.Contains(marker, "organisation_id_publish_idx"):
			return appErrors.Wrap(err, appErrors.ErrActiveCycleConflict.Code, appErrors.ErrActiveCycleConflict.Status, appErrors.ErrActiveCycleConflict.Message)
		}
	}
	return err
}

// List returns cycles matching provided filters, newest first by default.
func (r *ReviewCycleRepository) List(ctx context.Context, filter models.ReviewCycleFilter) ([]models.ReviewCycle, int, error) {
	base := "FROM review_cycles WHERE organisation_id = $1"
	args := []interface{}{filter.OrganisationID}

	if filter.Publish != nil {
		base += fmt.Sprintf(" AND publish = $%d", len(args)+1)
		args = append(args, *filter.Publish)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"start_date":    true,
		"end_date":      true,
		"last_modified": true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", reviewCycleColumns, base, sortBy, order, size, offset)

	var cycles []models.ReviewCycle
	if err := r.db.SelectContext(ctx, &cycles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list review cycles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count review cycles: %w", err)
	}

	return cycles, total, nil
}

// FindByID loads a cycle by identifier.
func (r *ReviewCycleRepository) FindByID(ctx context.Context, id string) (*models.ReviewCycle, error) {
	query := fmt.Sprintf("SELECT %s FROM review_cycles WHERE id = $1", reviewCycleColumns)
	var cycle models.ReviewCycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// FindPublished returns the organisation's currently published cycle, if any.
func (r *ReviewCycleRepository) FindPublished(ctx context.Context, organisationID string) (*models.ReviewCycle, error) {
	query := fmt.Sprintf("SELECT %s FROM review_cycles WHERE organisation_id = $1 AND publish = TRUE LIMIT 1", reviewCycleColumns)
	var cycle models.ReviewCycle
	if err := r.db.GetContext(ctx, &cycle, query, organisationID); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// Create inserts a new cycle. Constraint violations surface as
// ErrCycleOverlap or ErrActiveCycleConflict.
func (r *ReviewCycleRepository) Create(ctx context.Context, cycle *models.ReviewCycle) error {
	now := time.Now().UTC()
	cycle.ID = uuid.NewString()
	cycle.LastModified = now
	cycle.CreatedAt = now

	const query = `INSERT INTO review_cycles (
		id, organisation_id, start_date, end_date, publish,
		self_review_start_date, self_review_end_date,
		manager_review_start_date, manager_review_end_date,
		check_in_start_date, check_in_end_date,
		last_modified, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		cycle.ID, cycle.OrganisationID, cycle.StartDate, cycle.EndDate, cycle.Publish,
		cycle.SelfReviewStartDate, cycle.SelfReviewEndDate,
		cycle.ManagerReviewStartDate, cycle.ManagerReviewEndDate,
		cycle.CheckInStartDate, cycle.CheckInEndDate,
		cycle.LastModified, cycle.CreatedAt,
	)
	if err != nil {
		return classifyCycleConflict(err)
	}
	return nil
}

// Update replaces all date fields and the publish flag of a cycle.
func (r *ReviewCycleRepository) Update(ctx context.Context, cycle *models.ReviewCycle) error {
	cycle.LastModified = time.Now().UTC()

	const query = `UPDATE review_cycles SET
		start_date = $2, end_date = $3, publish = $4,
		self_review_start_date = $5, self_review_end_date = $6,
		manager_review_start_date = $7, manager_review_end_date = $8,
		check_in_start_date = $9, check_in_end_date = $10,
		last_modified = $11
	WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		cycle.ID, cycle.StartDate, cycle.EndDate, cycle.Publish,
		cycle.SelfReviewStartDate, cycle.SelfReviewEndDate,
		cycle.ManagerReviewStartDate, cycle.ManagerReviewEndDate,
		cycle.CheckInStartDate, cycle.CheckInEndDate,
		cycle.LastModified,
	)
	if err != nil {
		return classifyCycleConflict(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
	}
	return nil
}

// ReportRows returns the cycle's review report lines, reviewed employee first.
func (r *ReviewCycleRepository) ReportRows(ctx context.Context, cycleID string) ([]models.ReviewReportRow, error) {
	const query = `SELECT
		te.first_name || ' ' || te.last_name AS employee_name,
		fe.first_name || ' ' || fe.last_name AS reviewer_name,
		d.review_type_id, d.published, d.average_rating
	FROM review_details d
	JOIN employees te ON te.id = d.review_to_id
	JOIN employees fe ON fe.id = d.review_from_id
	WHERE d.review_cycle_id = $1
	ORDER BY employee_name, d.review_type_id`
	var rows []models.ReviewReportRow
	if err := r.db.SelectContext(ctx, &rows, query, cycleID); err != nil {
		return nil, fmt.Errorf("review report rows: %w", err)
	}
	return rows, nil
}

// Unpublish flips the publish flag to false without touching any dates.
func (r *ReviewCycleRepository) Unpublish(ctx context.Context, id string) error {
	const query = `UPDATE review_cycles SET publish = FALSE, last_modified = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("unpublish review cycle: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
	}
	return nil
}
