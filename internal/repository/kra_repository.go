package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perf-review-api/internal/models"
)

// KRARepository answers KRA/KPI completeness questions asked before a review
// cycle may be created.
type KRARepository struct {
	db *sqlx.DB
}

// NewKRARepository instantiates a KRA repository.
func NewKRARepository(db *sqlx.DB) *KRARepository {
	return &KRARepository{db: db}
}

// ListActive returns the organisation's active KRAs.
func (r *KRARepository) ListActive(ctx context.Context, organisationID string) ([]models.KRA, error) {
	const query = `SELECT id, organisation_id, name, active, created_at
	FROM kras WHERE organisation_id = $1 AND active = TRUE ORDER BY name`
	var kras []models.KRA
	if err := r.db.SelectContext(ctx, &kras, query, organisationID); err != nil {
		return nil, fmt.Errorf("list kras: %w", err)
	}
	return kras, nil
}

// CountKRAsWithoutActiveKPI counts active KRAs lacking at least one active KPI.
func (r *KRARepository) CountKRAsWithoutActiveKPI(ctx context.Context, organisationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM kras k
	WHERE k.organisation_id = $1 AND k.active = TRUE
	AND NOT EXISTS (SELECT 1 FROM kpis p WHERE p.kra_id = k.id AND p.active = TRUE)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, organisationID); err != nil {
		return 0, fmt.Errorf("count kras without kpi: %w", err)
	}
	return count, nil
}

// CountDesignationsMissingKPI counts (designation, KRA) pairs with no active
// KPI assigned, across active designations and KRAs of the organisation.
func (r *KRARepository) CountDesignationsMissingKPI(ctx context.Context, organisationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM designations d
	CROSS JOIN kras k
	WHERE d.organisation_id = $1 AND k.organisation_id = $1
	AND d.active = TRUE AND k.active = TRUE
	AND NOT EXISTS (
		SELECT 1 FROM kpis p
		WHERE p.kra_id = k.id AND p.designation_id = d.id AND p.active = TRUE
	)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, organisationID); err != nil {
		return 0, fmt.Errorf("count designation kpi gaps: %w", err)
	}
	return count, nil
}
