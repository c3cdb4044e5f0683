package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perf-review-api/internal/models"
)

func detailColumns() []string {
	return []string{
		"id", "review_cycle_id", "review_type_id", "review_to_id", "review_from_id",
		"draft", "published", "average_rating", "submitted_at", "updated_at",
	}
}

func TestReviewRepositoryFindDetails(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM review_details").
		WithArgs("cycle-1", 2, "emp-1").
		WillReturnRows(sqlmock.NewRows(detailColumns()).
			AddRow("d1", "cycle-1", 2, "emp-1", "mgr-1", false, true, 4.10, now, now))
	mock.ExpectQuery("FROM reviews WHERE review_details_id").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "review_details_id", "kra_id", "rating", "review"}).
			AddRow("r1", "d1", "kra-1", 5, "strong quarter").
			AddRow("r2", "d1", "kra-2", 3, ""))

	details, err := repo.FindDetails(context.Background(), models.ReviewFilter{
		ReviewCycleID: "cycle-1",
		ReviewTypeID:  models.ReviewTypeManager,
		ReviewToID:    "emp-1",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, 4.10, details[0].AverageRating)
	require.Len(t, details[0].Reviews, 2)
	assert.Equal(t, "kra-1", details[0].Reviews[0].KRAID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryFindDetailsFiltersReviewers(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`AND review_from_id = ANY\(\$4\)`).
		WithArgs("cycle-1", 3, "emp-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(detailColumns()))

	details, err := repo.FindDetails(context.Background(), models.ReviewFilter{
		ReviewCycleID: "cycle-1",
		ReviewTypeID:  models.ReviewTypeCheckIn,
		ReviewToID:    "emp-1",
		ReviewFromIDs: []string{"mgr-1", "mgr-2"},
	})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySaveDetails(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO review_details").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("d1"))
	mock.ExpectExec("DELETE FROM reviews WHERE review_details_id").
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	details := &models.ReviewDetails{
		ReviewCycleID: "cycle-1",
		ReviewTypeID:  models.ReviewTypeManager,
		ReviewToID:    "emp-1",
		ReviewFromID:  "mgr-1",
		Published:     true,
		AverageRating: 4.10,
		Reviews: []models.Review{
			{KRAID: "kra-1", Rating: 5},
			{KRAID: "kra-2", Rating: 3},
		},
	}
	require.NoError(t, repo.SaveDetails(context.Background(), details))
	assert.Equal(t, "d1", details.ID)
	assert.Equal(t, "d1", details.Reviews[0].ReviewDetailsID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySaveDetailsRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO review_details").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("d1"))
	mock.ExpectExec("DELETE FROM reviews WHERE review_details_id").
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	details := &models.ReviewDetails{
		ReviewCycleID: "cycle-1",
		ReviewTypeID:  models.ReviewTypeManager,
		ReviewToID:    "emp-1",
		ReviewFromID:  "mgr-1",
		Reviews:       []models.Review{{KRAID: "kra-1", Rating: 5}},
	}
	require.Error(t, repo.SaveDetails(context.Background(), details))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryGetKRAWeightages(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "review_cycle_id", "kra_id", "kra_name", "weightage"}).
		AddRow("w1", "cycle-1", "kra-1", "Delivery", 40).
		AddRow("w2", "cycle-1", "kra-2", "Collaboration", 35)
	mock.ExpectQuery(`AND w.kra_id = ANY\(\$2\) ORDER BY w.id`).
		WithArgs("cycle-1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	weightages, err := repo.GetKRAWeightages(context.Background(), "cycle-1", []string{"kra-1", "kra-2"})
	require.NoError(t, err)
	require.Len(t, weightages, 2)
	assert.Equal(t, "Delivery", weightages[0].KRAName)
	assert.Equal(t, 40, weightages[0].Weightage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryIsAllManagerReviewsComplete(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	mock.ExpectQuery("SELECT NOT EXISTS").
		WithArgs("emp-1", "cycle-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"not_exists"}).AddRow(true))

	complete, err := repo.IsAllManagerReviewsComplete(context.Background(), "emp-1", "cycle-1")
	require.NoError(t, err)
	assert.True(t, complete)

	mock.ExpectQuery("SELECT NOT EXISTS").
		WithArgs("emp-1", "cycle-1", 3).
		WillReturnRows(sqlmock.NewRows([]string{"not_exists"}).AddRow(false))

	complete, err = repo.IsAllCheckInsComplete(context.Background(), "emp-1", "cycle-1")
	require.NoError(t, err)
	assert.False(t, complete)
	assert.NoError(t, mock.ExpectationsWereMet())
}
