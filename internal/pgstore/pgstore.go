// Package pgstore writes service requests to Postgres for local runs.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kylejryan/artisan-request-portal/internal/models"
)

// execer abstracts the subset of pgxpool.Pool used by the store for easier testing.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store inserts service requests into the service_requests table.
type Store struct {
	db execer
}

// New builds a Store backed by the provided connection pool.
func New(db execer) (*Store, error) {
	if db == nil {
		return nil, errors.New("postgres store requires pool")
	}
	return &Store{db: db}, nil
}

const insertRequest = `
	INSERT INTO service_requests (
		username, request_date, user_email, user_address, user_contact_number,
		service_description, image_s3_key, requested_service_title, requested_artisan_name
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Insert writes r as a new row.
func (s *Store) Insert(ctx context.Context, r models.ServiceRequest) error {
	_, err := s.db.Exec(ctx, insertRequest,
		r.Username,
		r.RequestDate,
		r.UserEmail,
		r.UserAddress,
		r.UserContactNumber,
		r.ServiceDescription,
		r.ImageS3Key,
		r.RequestedServiceTitle,
		r.RequestedArtisanName,
	)
	if err != nil {
		return fmt.Errorf("insert service request: %w", err)
	}
	return nil
}

// NewClient opens a pgx pool and verifies the connection.
func NewClient(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

const createTable = `
	CREATE TABLE IF NOT EXISTS service_requests (
		username TEXT NOT NULL,
		request_date TEXT NOT NULL,
		user_email TEXT NOT NULL,
		user_address TEXT NOT NULL,
		user_contact_number TEXT,
		service_description TEXT NOT NULL,
		image_s3_key TEXT,
		requested_service_title TEXT NOT NULL,
		requested_artisan_name TEXT NOT NULL,
		PRIMARY KEY (username, request_date)
	)
`

// RunMigrations creates the service_requests table if it doesn't exist.
func RunMigrations(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create service_requests table: %w", err)
	}
	return nil
}
