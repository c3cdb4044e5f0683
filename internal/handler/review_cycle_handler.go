package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/service"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
	"github.com/noah-isme/perf-review-api/pkg/response"
)

// ReviewCycleHandler exposes review cycle endpoints.
type ReviewCycleHandler struct {
	service *service.ReviewCycleService
	dates   *DateResolver
}

// NewReviewCycleHandler constructs a review cycle handler.
func NewReviewCycleHandler(svc *service.ReviewCycleService, dates *DateResolver) *ReviewCycleHandler {
	return &ReviewCycleHandler{service: svc, dates: dates}
}

// List godoc
// @Summary List review cycles
// @Tags Review Cycles
// @Produce json
// @Param orgId path string true "Organisation ID"
// @Param publish query bool false "Filter by publish flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /organisations/{orgId}/review-cycles [get]
func (h *ReviewCycleHandler) List(c *gin.Context) {
	orgID := c.Param("orgId")
	filter := models.ReviewCycleFilter{OrganisationID: orgID}
	if publish := c.Query("publish"); publish != "" {
		if val, err := strconv.ParseBool(publish); err == nil {
			filter.Publish = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	today := h.dates.Today(c.Request.Context(), orgID)
	cycles, pagination, err := h.service.List(c.Request.Context(), filter, today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycles, pagination)
}

// GetActive godoc
// @Summary Get the organisation's active review cycle
// @Tags Review Cycles
// @Produce json
// @Param orgId path string true "Organisation ID"
// @Success 200 {object} response.Envelope
// @Router /organisations/{orgId}/review-cycles/active [get]
func (h *ReviewCycleHandler) GetActive(c *gin.Context) {
	orgID := c.Param("orgId")
	today := h.dates.Today(c.Request.Context(), orgID)
	cycle, err := h.service.GetActive(c.Request.Context(), orgID, today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Get godoc
// @Summary Get review cycle by ID
// @Tags Review Cycles
// @Produce json
// @Param id path string true "Review cycle ID"
// @Success 200 {object} response.Envelope
// @Router /review-cycles/{id} [get]
func (h *ReviewCycleHandler) Get(c *gin.Context) {
	orgID := c.Query("organisation_id")
	today := h.dates.Today(c.Request.Context(), orgID)
	cycle, err := h.service.Get(c.Request.Context(), c.Param("id"), today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Create godoc
// @Summary Create review cycle
// @Tags Review Cycles
// @Accept json
// @Produce json
// @Param payload body service.ReviewCycleRequest true "Cycle payload"
// @Success 201 {object} response.Envelope
// @Router /review-cycles [post]
func (h *ReviewCycleHandler) Create(c *gin.Context) {
	var req service.ReviewCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cycle, err := h.service.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cycle)
}

// Update godoc
// @Summary Update review cycle
// @Tags Review Cycles
// @Accept json
// @Produce json
// @Param id path string true "Review cycle ID"
// @Param payload body service.ReviewCycleRequest true "Cycle payload"
// @Success 200 {object} response.Envelope
// @Router /review-cycles/{id} [put]
func (h *ReviewCycleHandler) Update(c *gin.Context) {
	var req service.ReviewCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cycle, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Unpublish godoc
// @Summary Unpublish review cycle
// @Tags Review Cycles
// @Produce json
// @Param id path string true "Review cycle ID"
// @Success 204 "No Content"
// @Router /review-cycles/{id}/unpublish [post]
func (h *ReviewCycleHandler) Unpublish(c *gin.Context) {
	if err := h.service.Unpublish(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmissionStarted godoc
// @Summary Check whether review submissions are underway for a date
// @Tags Review Cycles
// @Produce json
// @Param orgId path string true "Organisation ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /organisations/{orgId}/review-submission-started [get]
func (h *ReviewCycleHandler) SubmissionStarted(c *gin.Context) {
	orgID := c.Param("orgId")
	date := h.dates.Today(c.Request.Context(), orgID)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	started, err := h.service.IsReviewSubmissionStarted(c.Request.Context(), orgID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"started": started}, nil)
}
