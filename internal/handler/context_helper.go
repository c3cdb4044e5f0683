package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/service"
)

type organisationReader interface {
	FindByID(ctx context.Context, id string) (*models.Organisation, error)
}

// DateResolver computes the organisation-local calendar date handed to the
// services. The services themselves never read the wall clock.
type DateResolver struct {
	orgs     organisationReader
	fallback *time.Location
	logger   *zap.Logger
}

// NewDateResolver builds a resolver with an IANA fallback zone for unknown
// organisations.
func NewDateResolver(orgs organisationReader, fallbackZone string, logger *zap.Logger) *DateResolver {
	loc, err := time.LoadLocation(fallbackZone)
	if err != nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DateResolver{orgs: orgs, fallback: loc, logger: logger}
}

// Today returns the organisation-local calendar date at this instant.
func (r *DateResolver) Today(ctx context.Context, organisationID string) time.Time {
	now := time.Now()
	if r.orgs != nil && organisationID != "" {
		org, err := r.orgs.FindByID(ctx, organisationID)
		if err == nil {
			return org.Today(now)
		}
		r.logger.Debug("organisation timezone lookup failed, using fallback",
			zap.String("organisation_id", organisationID), zap.Error(err))
	}
	local := now.In(r.fallback)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// actorFrom extracts the acting employee for the audit trail. The identity
// header is populated upstream by the API gateway.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:        c.GetHeader("X-Employee-ID"),
		IPAddress: c.ClientIP(),
	}
}
