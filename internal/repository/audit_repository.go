package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perf-review-api/internal/models"
)

// AuditRepository appends user activity records. Callers treat writes as
// best-effort.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository instantiates an audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts one user activity row.
func (r *AuditRepository) Record(ctx context.Context, activity *models.UserActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO user_activities (id, actor_id, module_id, activity, description, ip_address, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		activity.ID, activity.ActorID, activity.ModuleID,
		activity.Activity, activity.Description, activity.IPAddress, activity.CreatedAt,
	); err != nil {
		return fmt.Errorf("record user activity: %w", err)
	}
	return nil
}
