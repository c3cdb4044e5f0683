package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/service"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
	"github.com/noah-isme/perf-review-api/pkg/response"
)

type cycleRepoStub struct {
	published *models.ReviewCycle
	createErr error
}

func (s *cycleRepoStub) List(ctx context.Context, filter models.ReviewCycleFilter) ([]models.ReviewCycle, int, error) {
	return nil, 0, nil
}

func (s *cycleRepoStub) FindByID(ctx context.Context, id string) (*models.ReviewCycle, error) {
	return nil, sql.ErrNoRows
}

func (s *cycleRepoStub) FindPublished(ctx context.Context, organisationID string) (*models.ReviewCycle, error) {
	if s.published != nil {
		copied := *s.published
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *cycleRepoStub) Create(ctx context.Context, cycle *models.ReviewCycle) error {
	if s.createErr != nil {
		return s.createErr
	}
	cycle.ID = "cycle-new"
	return nil
}

func (s *cycleRepoStub) Update(ctx context.Context, cycle *models.ReviewCycle) error { return nil }

func (s *cycleRepoStub) Unpublish(ctx context.Context, id string) error { return nil }

type kraReaderStub struct{}

func (kraReaderStub) CountKRAsWithoutActiveKPI(ctx context.Context, organisationID string) (int, error) {
	return 0, nil
}

func (kraReaderStub) CountDesignationsMissingKPI(ctx context.Context, organisationID string) (int, error) {
	return 0, nil
}

type orgReaderStub struct{}

func (orgReaderStub) FindByID(ctx context.Context, id string) (*models.Organisation, error) {
	return &models.Organisation{ID: id, Timezone: "UTC"}, nil
}

func newCycleHandlerFixture(repo *cycleRepoStub) *ReviewCycleHandler {
	svc := service.NewReviewCycleService(repo, kraReaderStub{}, nil, nil, time.Minute, nil, nil, nil, nil)
	dates := NewDateResolver(orgReaderStub{}, "UTC", nil)
	return NewReviewCycleHandler(svc, dates)
}

func cycleRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"organisation_id":           "org-1",
		"start_date":                "2024-01-01T00:00:00Z",
		"end_date":                  "2024-03-31T00:00:00Z",
		"self_review_start_date":    "2024-01-10T00:00:00Z",
		"self_review_end_date":      "2024-01-31T00:00:00Z",
		"manager_review_start_date": "2024-02-01T00:00:00Z",
		"manager_review_end_date":   "2024-02-20T00:00:00Z",
		"check_in_start_date":       "2024-02-21T00:00:00Z",
		"check_in_end_date":         "2024-03-15T00:00:00Z",
	}
}

func postJSON(t *testing.T, handler gin.HandlerFunc, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Employee-ID", "admin-1")
	c.Request = req
	handler(c)
	return w
}

func TestReviewCycleHandlerCreate(t *testing.T) {
	handler := newCycleHandlerFixture(&cycleRepoStub{})

	w := postJSON(t, handler.Create, "/review-cycles", cycleRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestReviewCycleHandlerCreateBadDates(t *testing.T) {
	handler := newCycleHandlerFixture(&cycleRepoStub{})

	body := cycleRequestBody()
	body["end_date"] = body["start_date"]
	w := postJSON(t, handler.Create, "/review-cycles", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "End date should be greater than start date", envelope.Error.Message)
}

func TestReviewCycleHandlerCreateConflict(t *testing.T) {
	handler := newCycleHandlerFixture(&cycleRepoStub{createErr: appErrors.ErrActiveCycleConflict})

	w := postJSON(t, handler.Create, "/review-cycles", cycleRequestBody())
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ACTIVE_CYCLE_CONFLICT", envelope.Error.Code)
	assert.Equal(t, "Another Review Cycle is already active.", envelope.Error.Message)
}

func TestReviewCycleHandlerCreateMalformedBody(t *testing.T) {
	handler := newCycleHandlerFixture(&cycleRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/review-cycles", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewCycleHandlerGetActiveNotFound(t *testing.T) {
	handler := newCycleHandlerFixture(&cycleRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/organisations/org-1/review-cycles/active", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "orgId", Value: "org-1"}}

	handler.GetActive(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NO_ACTIVE_CYCLE", envelope.Error.Code)
}

func TestReviewCycleHandlerSubmissionStartedWithDate(t *testing.T) {
	published := &models.ReviewCycle{
		ID:                     "cycle-1",
		OrganisationID:         "org-1",
		Publish:                true,
		StartDate:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		ManagerReviewStartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		ManagerReviewEndDate:   time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		CheckInStartDate:       time.Date(2024, 2, 21, 0, 0, 0, 0, time.UTC),
		CheckInEndDate:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	handler := newCycleHandlerFixture(&cycleRepoStub{published: published})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/organisations/org-1/review-submission-started?date=2024-02-10", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "orgId", Value: "org-1"}}

	handler.SubmissionStarted(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"started":true`)
}

func TestReviewCycleHandlerSubmissionStartedBadDate(t *testing.T) {
	handler := newCycleHandlerFixture(&cycleRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/organisations/org-1/review-submission-started?date=10-02-2024", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "orgId", Value: "org-1"}}

	handler.SubmissionStarted(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
