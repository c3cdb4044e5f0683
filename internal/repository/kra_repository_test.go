package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKRARepositoryListActive(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewKRARepository(db)

	rows := sqlmock.NewRows([]string{"id", "organisation_id", "name", "active", "created_at"}).
		AddRow("kra-1", "org-1", "Delivery", true, time.Now()).
		AddRow("kra-2", "org-1", "Ownership", true, time.Now())
	mock.ExpectQuery("FROM kras WHERE organisation_id = \\$1 AND active = TRUE").
		WithArgs("org-1").
		WillReturnRows(rows)

	kras, err := repo.ListActive(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, kras, 2)
	assert.Equal(t, "Delivery", kras[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKRARepositoryCountKRAsWithoutActiveKPI(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewKRARepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM kras k")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountKRAsWithoutActiveKPI(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKRARepositoryCountDesignationsMissingKPI(t *testing.T) {
	db, mock, cleanup := newCycleRepoMock(t)
	defer cleanup()
	repo := NewKRARepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM designations d")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountDesignationsMissingKPI(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
