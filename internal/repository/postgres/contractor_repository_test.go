package postgres_test

import (
	"database/sql"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository/postgres"
)

// newMockDB wires a sqlx.DB backed by go-sqlmock, the way
// TestCustomerRepository_Unit exercises each repository's raw SQL without a
// live Postgres instance.
func newMockDB(t *testing.T) (*postgres.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &postgres.Database{DB: sqlx.NewDb(db, "postgres")}, mock
}

var contractorRows = []string{
	"id", "name", "base_location", "working_hours", "skills", "calendar",
	"rating", "max_jobs_per_day", "created_at", "updated_at",
}

func contractorRow(c *domain.Contractor) []driverValue {
	loc, _ := json.Marshal(c.BaseLocation)
	wh, _ := json.Marshal(c.WorkingHours)
	cal, _ := json.Marshal(c.Calendar)
	return []driverValue{
		c.ID.String(), c.Name, loc, wh, pqArrayText(c.Skills), cal,
		c.Rating, c.MaxJobsPerDay, c.CreatedAt, c.UpdatedAt,
	}
}

type driverValue = interface{}

// pqArrayText renders a Go string slice in Postgres' array text format, the
// wire form pq.StringArray.Scan expects back from a query result.
func pqArrayText(ss []string) string {
	out := "{"
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out + "}"
}

func TestContractorRepository_GetByID_SQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	c := newFixtureContractor()
	rows := sqlmock.NewRows(contractorRows).AddRow(contractorRow(c)...)

	mock.ExpectQuery("SELECT (.+) FROM contractors WHERE id = \\$1").
		WithArgs(c.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(newCtx(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, []string{"hvac"}, got.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractorRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM contractors WHERE id = \\$1").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(newCtx(), id)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractorRepository_Add_SQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	c := newFixtureContractor()

	mock.ExpectExec("INSERT INTO contractors").
		WithArgs(
			c.ID, c.Name, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), c.Rating, c.MaxJobsPerDay, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Add(newCtx(), c)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractorRepository_Add_RejectsInvalidContractor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	c := newFixtureContractor(func(c *domain.Contractor) {
		c.WorkingHours = nil
	})

	err := repo.Add(newCtx(), c)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractorRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	c := newFixtureContractor()

	mock.ExpectExec("UPDATE contractors SET").
		WithArgs(
			c.ID, c.Name, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), c.Rating, c.MaxJobsPerDay, c.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(newCtx(), c)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractorRepository_Delete_SQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM contractors WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Delete(newCtx(), id)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractorRepository_GetBySkills_SQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewContractorRepository(db)

	c1 := newFixtureContractor()
	c2 := newFixtureContractor()
	rows := sqlmock.NewRows(contractorRows).
		AddRow(contractorRow(c1)...).
		AddRow(contractorRow(c2)...)

	mock.ExpectQuery("SELECT (.+) FROM contractors WHERE skills @> \\$1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	got, err := repo.GetBySkills(newCtx(), []string{"HVAC"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
