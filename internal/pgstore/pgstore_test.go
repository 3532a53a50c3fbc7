package pgstore

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylejryan/artisan-request-portal/internal/models"
)

func TestInsertWritesRow(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	s, err := New(pool)
	require.NoError(t, err)

	req := models.ServiceRequest{
		Username:              "jane",
		RequestDate:           "2026-10-19T07:12:00.000000000Z",
		UserEmail:             "a@b.com",
		UserAddress:           "1 Main St",
		ServiceDescription:    "Leaky pipe",
		RequestedServiceTitle: "Fix sink",
		RequestedArtisanName:  "PipeMasters",
	}

	pool.ExpectExec("INSERT INTO service_requests").
		WithArgs(
			req.Username, req.RequestDate, req.UserEmail, req.UserAddress, req.UserContactNumber,
			req.ServiceDescription, req.ImageS3Key, req.RequestedServiceTitle, req.RequestedArtisanName,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Insert(context.Background(), req))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestInsertWrapsError(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	s, err := New(pool)
	require.NoError(t, err)

	boom := errors.New("connection reset")
	pool.ExpectExec("INSERT INTO service_requests").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(boom)

	err = s.Insert(context.Background(), models.ServiceRequest{Username: "jane"})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestNewRequiresPool(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestRunMigrations(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectExec("CREATE TABLE IF NOT EXISTS service_requests").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, RunMigrations(context.Background(), pool))
	assert.NoError(t, pool.ExpectationsWereMet())
}
