package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/service"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
	"github.com/noah-isme/perf-review-api/pkg/response"
)

// ReviewHandler exposes review submission endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	dates   *DateResolver
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(svc *service.ReviewService, dates *DateResolver) *ReviewHandler {
	return &ReviewHandler{service: svc, dates: dates}
}

// List godoc
// @Summary List review submissions
// @Tags Reviews
// @Produce json
// @Param cycleId query string true "Review cycle ID"
// @Param type query int true "Review type (1 self, 2 manager, 3 check-in)"
// @Param toId query string true "Reviewed employee ID"
// @Param fromIds query string false "Comma-separated reviewer IDs"
// @Success 200 {object} response.Envelope
// @Router /reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	reviewType, err := strconv.Atoi(c.Query("type"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be an integer"))
		return
	}
	filter := models.ReviewFilter{
		ReviewCycleID: c.Query("cycleId"),
		ReviewTypeID:  models.ReviewType(reviewType),
		ReviewToID:    c.Query("toId"),
	}
	if fromIDs := c.Query("fromIds"); fromIDs != "" {
		filter.ReviewFromIDs = strings.Split(fromIDs, ",")
	}

	details, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Get godoc
// @Summary Get review submission by ID
// @Tags Reviews
// @Produce json
// @Param id path string true "Review details ID"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	details, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Save godoc
// @Summary Save or submit a review
// @Description Saves a draft or publishes a self, manager or check-in review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body service.SaveReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /reviews [post]
func (h *ReviewHandler) Save(c *gin.Context) {
	var req service.SaveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	today := h.dates.Today(c.Request.Context(), req.OrganisationID)
	details, err := h.service.Save(c.Request.Context(), req, today, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}
