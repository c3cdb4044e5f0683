package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/perf-review-api/internal/models"
)

// ReviewRepository handles persistence for review submissions and their KRA
// weightage lookups.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository instantiates a review repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindDetails returns review detail rows for the filter, each with its KRA
// review rows attached.
func (r *ReviewRepository) FindDetails(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewDetails, error) {
	base := `SELECT id, review_cycle_id, review_type_id, review_to_id, review_from_id,
		draft, published, average_rating, submitted_at, updated_at
	FROM review_details
	WHERE review_cycle_id = $1 AND review_type_id = $2 AND review_to_id = $3`
	args := []interface{}{filter.ReviewCycleID, filter.ReviewTypeID, filter.ReviewToID}

	if len(filter.ReviewFromIDs) > 0 {
		base += fmt.Sprintf(" AND review_from_id = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(filter.ReviewFromIDs))
	}

	var details []models.ReviewDetails
	if err := r.db.SelectContext(ctx, &details, base, args...); err != nil {
		return nil, fmt.Errorf("find review details: %w", err)
	}

	for i := range details {
		reviews, err := r.findReviews(ctx, details[i].ID)
		if err != nil {
			return nil, err
		}
		details[i].Reviews = reviews
	}
	return details, nil
}

// FindDetailsByID loads one review detail row with its reviews.
func (r *ReviewRepository) FindDetailsByID(ctx context.Context, id string) (*models.ReviewDetails, error) {
	const query = `SELECT id, review_cycle_id, review_type_id, review_to_id, review_from_id,
		draft, published, average_rating, submitted_at, updated_at
	FROM review_details WHERE id = $1`
	var details models.ReviewDetails
	if err := r.db.GetContext(ctx, &details, query, id); err != nil {
		return nil, err
	}
	reviews, err := r.findReviews(ctx, details.ID)
	if err != nil {
		return nil, err
	}
	details.Reviews = reviews
	return &details, nil
}

func (r *ReviewRepository) findReviews(ctx context.Context, detailsID string) ([]models.Review, error) {
	const query = `SELECT id, review_details_id, kra_id, rating, review
	FROM reviews WHERE review_details_id = $1 ORDER BY id`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, detailsID); err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	return reviews, nil
}

// SaveDetails creates or fully replaces a review submission. The head row is
// upserted on the (cycle, type, to, from) tuple; KRA rows are replaced
// wholesale, which keeps repeated draft saves idempotent.
func (r *ReviewRepository) SaveDetails(ctx context.Context, details *models.ReviewDetails) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save review: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if details.ID == "" {
		details.ID = uuid.NewString()
	}
	details.UpdatedAt = time.Now().UTC()

	const upsert = `INSERT INTO review_details (
		id, review_cycle_id, review_type_id, review_to_id, review_from_id,
		draft, published, average_rating, submitted_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (review_cycle_id, review_type_id, review_to_id, review_from_id)
	DO UPDATE SET draft = EXCLUDED.draft, published = EXCLUDED.published,
		average_rating = EXCLUDED.average_rating,
		submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at
	RETURNING id`

	if err := tx.GetContext(ctx, &details.ID, upsert,
		details.ID, details.ReviewCycleID, details.ReviewTypeID,
		details.ReviewToID, details.ReviewFromID,
		details.Draft, details.Published, details.AverageRating,
		details.SubmittedAt, details.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert review details: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE review_details_id = $1`, details.ID); err != nil {
		return fmt.Errorf("clear reviews: %w", err)
	}

	const insertReview = `INSERT INTO reviews (id, review_details_id, kra_id, rating, review)
	VALUES ($1, $2, $3, $4, $5)`
	for i := range details.Reviews {
		review := &details.Reviews[i]
		if review.ID == "" {
			review.ID = uuid.NewString()
		}
		review.ReviewDetailsID = details.ID
		if _, err := tx.ExecContext(ctx, insertReview,
			review.ID, review.ReviewDetailsID, review.KRAID, review.Rating, review.Review,
		); err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
	}

	return tx.Commit()
}

// GetKRAWeightages returns the weightages configured for a cycle, restricted
// to the given KRA ids when provided, in configuration order.
func (r *ReviewRepository) GetKRAWeightages(ctx context.Context, cycleID string, kraIDs []string) ([]models.KRAWeightage, error) {
	query := `SELECT w.id, w.review_cycle_id, w.kra_id, k.name AS kra_name, w.weightage
	FROM kra_weightages w
	JOIN kras k ON k.id = w.kra_id
	WHERE w.review_cycle_id = $1`
	args := []interface{}{cycleID}

	if len(kraIDs) > 0 {
		query += " AND w.kra_id = ANY($2)"
		args = append(args, pq.Array(kraIDs))
	}
	query += " ORDER BY w.id"

	var weightages []models.KRAWeightage
	if err := r.db.SelectContext(ctx, &weightages, query, args...); err != nil {
		return nil, fmt.Errorf("get kra weightages: %w", err)
	}
	return weightages, nil
}

// IsAllManagerReviewsComplete reports whether every manager expected to review
// the employee in the cycle has published a manager review.
func (r *ReviewRepository) IsAllManagerReviewsComplete(ctx context.Context, employeeID, cycleID string) (bool, error) {
	return r.isAllComplete(ctx, employeeID, cycleID, models.ReviewTypeManager)
}

// IsAllCheckInsComplete reports whether every check-in for the employee in the
// cycle is published.
func (r *ReviewRepository) IsAllCheckInsComplete(ctx context.Context, employeeID, cycleID string) (bool, error) {
	return r.isAllComplete(ctx, employeeID, cycleID, models.ReviewTypeCheckIn)
}

func (r *ReviewRepository) isAllComplete(ctx context.Context, employeeID, cycleID string, reviewType models.ReviewType) (bool, error) {
	// Expected reviewers are the employee's current managers; a review counts
	// once published (drafts do not).
	const query = `SELECT NOT EXISTS (
		SELECT 1 FROM manager_mappings m
		WHERE m.employee_id = $1 AND m.ends_at IS NULL
		AND NOT EXISTS (
			SELECT 1 FROM review_details d
			WHERE d.review_cycle_id = $2 AND d.review_type_id = $3
			AND d.review_to_id = $1 AND d.review_from_id = m.manager_id
			AND d.published = TRUE
		)
	)`
	var complete bool
	if err := r.db.GetContext(ctx, &complete, query, employeeID, cycleID, reviewType); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check review completion: %w", err)
	}
	return complete, nil
}
