package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perf-review-api/internal/models"
)

// OrganisationRepository reads organisation records; the review core only
// needs the time zone for date resolution.
type OrganisationRepository struct {
	db *sqlx.DB
}

// NewOrganisationRepository instantiates an organisation repository.
func NewOrganisationRepository(db *sqlx.DB) *OrganisationRepository {
	return &OrganisationRepository{db: db}
}

// FindByID loads an organisation by identifier.
func (r *OrganisationRepository) FindByID(ctx context.Context, id string) (*models.Organisation, error) {
	const query = `SELECT id, name, timezone, active, created_at, updated_at
	FROM organisations WHERE id = $1`
	var org models.Organisation
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		return nil, err
	}
	return &org, nil
}
