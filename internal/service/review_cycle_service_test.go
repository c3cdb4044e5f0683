package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perf-review-api/internal/models"
	"github.com/noah-isme/perf-review-api/internal/notify"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

type mockCycleRepo struct {
	cycles    map[string]*models.ReviewCycle
	createErr error
	updateErr error
	published *models.ReviewCycle
	findCalls int
}

func (m *mockCycleRepo) List(ctx context.Context, filter models.ReviewCycleFilter) ([]models.ReviewCycle, int, error) {
	var result []models.ReviewCycle
	for _, c := range m.cycles {
		if c.OrganisationID == filter.OrganisationID {
			result = append(result, *c)
		}
	}
	return result, len(result), nil
}

func (m *mockCycleRepo) FindByID(ctx context.Context, id string) (*models.ReviewCycle, error) {
	if c, ok := m.cycles[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCycleRepo) FindPublished(ctx context.Context, organisationID string) (*models.ReviewCycle, error) {
	m.findCalls++
	if m.published != nil && m.published.OrganisationID == organisationID {
		copied := *m.published
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCycleRepo) Create(ctx context.Context, cycle *models.ReviewCycle) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.cycles == nil {
		m.cycles = make(map[string]*models.ReviewCycle)
	}
	cycle.ID = "cycle-new"
	m.cycles[cycle.ID] = cycle
	return nil
}

func (m *mockCycleRepo) Update(ctx context.Context, cycle *models.ReviewCycle) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.cycles[cycle.ID] = cycle
	return nil
}

func (m *mockCycleRepo) Unpublish(ctx context.Context, id string) error {
	c, ok := m.cycles[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
	}
	c.Publish = false
	return nil
}

type mockKRAReader struct {
	krasWithoutKPI  int
	designationGaps int
}

func (m *mockKRAReader) CountKRAsWithoutActiveKPI(ctx context.Context, organisationID string) (int, error) {
	return m.krasWithoutKPI, nil
}

func (m *mockKRAReader) CountDesignationsMissingKPI(ctx context.Context, organisationID string) (int, error) {
	return m.designationGaps, nil
}

type mockCycleCache struct {
	mu      sync.Mutex
	entries map[string]models.ReviewCycle
	deleted []string
}

func (m *mockCycleCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cached, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*models.ReviewCycle) = cached
	return nil
}

func (m *mockCycleCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]models.ReviewCycle)
	}
	m.entries[key] = *value.(*models.ReviewCycle)
	return nil
}

func (m *mockCycleCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type mockAudit struct {
	mu       sync.Mutex
	recorded []models.UserActivity
}

func (m *mockAudit) Record(ctx context.Context, activity *models.UserActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, *activity)
	return nil
}

type mockOutbox struct {
	mu      sync.Mutex
	intents []notify.Intent
}

func (m *mockOutbox) Enqueue(intent notify.Intent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents = append(m.intents, intent)
}

func (m *mockOutbox) byType(t notify.IntentType) []notify.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []notify.Intent
	for _, intent := range m.intents {
		if intent.Type == t {
			result = append(result, intent)
		}
	}
	return result
}

type mockEmployeeLister struct {
	employees []models.Employee
}

func (m *mockEmployeeLister) ListActiveByOrganisation(ctx context.Context, organisationID string) ([]models.Employee, error) {
	return m.employees, nil
}

func validCycleRequest() ReviewCycleRequest {
	return ReviewCycleRequest{
		OrganisationID:         "org-1",
		StartDate:              day(2024, time.January, 1),
		EndDate:                day(2024, time.March, 31),
		SelfReviewStartDate:    day(2024, time.January, 10),
		SelfReviewEndDate:      day(2024, time.January, 31),
		ManagerReviewStartDate: day(2024, time.February, 1),
		ManagerReviewEndDate:   day(2024, time.February, 20),
		CheckInStartDate:       day(2024, time.February, 21),
		CheckInEndDate:         day(2024, time.March, 15),
	}
}

func newCycleService(repo *mockCycleRepo, kras *mockKRAReader, cache *mockCycleCache, outbox *mockOutbox) *ReviewCycleService {
	var c cycleCache
	if cache != nil {
		c = cache
	}
	return NewReviewCycleService(repo, kras, &mockEmployeeLister{}, c, time.Minute, &mockAudit{}, outbox, nil, nil)
}

func TestReviewCycleServiceCreate(t *testing.T) {
	repo := &mockCycleRepo{}
	outbox := &mockOutbox{}
	svc := newCycleService(repo, &mockKRAReader{}, nil, outbox)

	cycle, err := svc.Create(context.Background(), validCycleRequest(), Actor{ID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, "cycle-new", cycle.ID)
	assert.False(t, cycle.Publish)
	assert.Empty(t, outbox.byType(notify.IntentPhaseStarted))
}

func TestReviewCycleServiceCreatePublishedNotifies(t *testing.T) {
	repo := &mockCycleRepo{}
	outbox := &mockOutbox{}
	lister := &mockEmployeeLister{employees: []models.Employee{{ID: "e1", Email: "e1@acme.test"}}}
	svc := NewReviewCycleService(repo, &mockKRAReader{}, lister, nil, time.Minute, &mockAudit{}, outbox, nil, nil)

	req := validCycleRequest()
	req.Publish = true
	_, err := svc.Create(context.Background(), req, Actor{ID: "admin-1"})
	require.NoError(t, err)

	started := outbox.byType(notify.IntentPhaseStarted)
	require.Len(t, started, 1)
	assert.Equal(t, []string{"e1@acme.test"}, started[0].Recipients)
}

func TestReviewCycleServiceCreateRejectsBadDates(t *testing.T) {
	repo := &mockCycleRepo{}
	svc := newCycleService(repo, &mockKRAReader{}, nil, &mockOutbox{})

	req := validCycleRequest()
	req.EndDate = req.StartDate
	_, err := svc.Create(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, "End date should be greater than start date", err.Error())
	assert.Empty(t, repo.cycles)
}

func TestReviewCycleServiceCreateRequiresCompleteKRASetup(t *testing.T) {
	svc := newCycleService(&mockCycleRepo{}, &mockKRAReader{krasWithoutKPI: 2}, nil, &mockOutbox{})
	_, err := svc.Create(context.Background(), validCycleRequest(), Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrKRAWithoutKPI)

	svc = newCycleService(&mockCycleRepo{}, &mockKRAReader{designationGaps: 1}, nil, &mockOutbox{})
	_, err = svc.Create(context.Background(), validCycleRequest(), Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDesignationGap)
}

func TestReviewCycleServiceCreateSurfacesConflicts(t *testing.T) {
	repo := &mockCycleRepo{createErr: appErrors.ErrCycleOverlap}
	svc := newCycleService(repo, &mockKRAReader{}, nil, &mockOutbox{})

	_, err := svc.Create(context.Background(), validCycleRequest(), Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrCycleOverlap)
	assert.Equal(t, "Review cycle has already been created for the selected range", err.Error())

	repo.createErr = appErrors.ErrActiveCycleConflict
	_, err = svc.Create(context.Background(), validCycleRequest(), Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrActiveCycleConflict)
	assert.Equal(t, "Another Review Cycle is already active.", err.Error())
}

func TestReviewCycleServiceUpdateInvalidatesCache(t *testing.T) {
	existing := sampleServiceCycle(true)
	repo := &mockCycleRepo{cycles: map[string]*models.ReviewCycle{existing.ID: existing}, published: existing}
	cache := &mockCycleCache{}
	svc := newCycleService(repo, &mockKRAReader{}, cache, &mockOutbox{})

	// warm the cache
	_, err := svc.GetActive(context.Background(), "org-1", day(2024, time.January, 15))
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	_, err = svc.Update(context.Background(), existing.ID, validCycleRequest(), Actor{ID: "admin-1"})
	require.NoError(t, err)
	assert.Contains(t, cache.deleted, cacheKeyActiveCycle("org-1"))
}

func TestReviewCycleServiceUpdateNotFound(t *testing.T) {
	svc := newCycleService(&mockCycleRepo{}, &mockKRAReader{}, nil, &mockOutbox{})
	_, err := svc.Update(context.Background(), "missing", validCycleRequest(), Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReviewCycleServiceUpdateNotifiesOnRequest(t *testing.T) {
	existing := sampleServiceCycle(true)
	repo := &mockCycleRepo{cycles: map[string]*models.ReviewCycle{existing.ID: existing}}
	outbox := &mockOutbox{}
	lister := &mockEmployeeLister{employees: []models.Employee{{ID: "e1", Email: "e1@acme.test"}}}
	svc := NewReviewCycleService(repo, &mockKRAReader{}, lister, nil, time.Minute, &mockAudit{}, outbox, nil, nil)

	req := validCycleRequest()
	req.NotifyEmployees = true
	_, err := svc.Update(context.Background(), existing.ID, req, Actor{ID: "admin-1"})
	require.NoError(t, err)
	assert.Len(t, outbox.byType(notify.IntentCycleDatesChanged), 1)
}

func TestReviewCycleServiceUnpublish(t *testing.T) {
	existing := sampleServiceCycle(true)
	repo := &mockCycleRepo{cycles: map[string]*models.ReviewCycle{existing.ID: existing}}
	svc := newCycleService(repo, &mockKRAReader{}, nil, &mockOutbox{})

	require.NoError(t, svc.Unpublish(context.Background(), existing.ID, Actor{ID: "admin-1"}))
	assert.False(t, repo.cycles[existing.ID].Publish)

	err := svc.Unpublish(context.Background(), "missing", Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReviewCycleServiceGetActiveResolvesFlags(t *testing.T) {
	published := sampleServiceCycle(true)
	repo := &mockCycleRepo{published: published}
	svc := newCycleService(repo, &mockKRAReader{}, nil, &mockOutbox{})

	cycle, err := svc.GetActive(context.Background(), "org-1", day(2024, time.January, 15))
	require.NoError(t, err)
	assert.True(t, cycle.IsSelfReviewActive)
	assert.False(t, cycle.IsManagerReviewActive)
}

func TestReviewCycleServiceGetActiveNone(t *testing.T) {
	svc := newCycleService(&mockCycleRepo{}, &mockKRAReader{}, nil, &mockOutbox{})
	_, err := svc.GetActive(context.Background(), "org-1", day(2024, time.January, 15))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNoActiveCycle)
}

func TestReviewCycleServiceGetActiveReadsThroughCache(t *testing.T) {
	published := sampleServiceCycle(true)
	repo := &mockCycleRepo{published: published}
	cache := &mockCycleCache{}
	svc := newCycleService(repo, &mockKRAReader{}, cache, &mockOutbox{})

	_, err := svc.GetActive(context.Background(), "org-1", day(2024, time.January, 15))
	require.NoError(t, err)
	_, err = svc.GetActive(context.Background(), "org-1", day(2024, time.January, 16))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findCalls)
}

func TestIsReviewSubmissionStarted(t *testing.T) {
	published := sampleServiceCycle(true)
	repo := &mockCycleRepo{published: published}
	svc := newCycleService(repo, &mockKRAReader{}, nil, &mockOutbox{})

	started, err := svc.IsReviewSubmissionStarted(context.Background(), "org-1", day(2024, time.February, 10))
	require.NoError(t, err)
	assert.True(t, started)

	started, err = svc.IsReviewSubmissionStarted(context.Background(), "org-1", day(2024, time.January, 5))
	require.NoError(t, err)
	assert.False(t, started)
}

func TestIsReviewSubmissionStartedNoCycle(t *testing.T) {
	svc := newCycleService(&mockCycleRepo{}, &mockKRAReader{}, nil, &mockOutbox{})
	started, err := svc.IsReviewSubmissionStarted(context.Background(), "org-1", day(2024, time.February, 10))
	require.NoError(t, err)
	assert.False(t, started)
}

func sampleServiceCycle(publish bool) *models.ReviewCycle {
	return &models.ReviewCycle{
		ID:                     "cycle-1",
		OrganisationID:         "org-1",
		StartDate:              day(2024, time.January, 1),
		EndDate:                day(2024, time.March, 31),
		Publish:                publish,
		SelfReviewStartDate:    day(2024, time.January, 10),
		SelfReviewEndDate:      day(2024, time.January, 31),
		ManagerReviewStartDate: day(2024, time.February, 1),
		ManagerReviewEndDate:   day(2024, time.February, 20),
		CheckInStartDate:       day(2024, time.February, 21),
		CheckInEndDate:         day(2024, time.March, 15),
	}
}
