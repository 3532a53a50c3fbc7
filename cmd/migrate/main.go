// Package main creates the Postgres schema used by the postgres metadata backend.
package main

import (
	"context"
	"log"
	"time"

	"github.com/kylejryan/artisan-request-portal/internal/config"
	"github.com/kylejryan/artisan-request-portal/internal/pgstore"
)

func main() {
	log.Println("Starting migration runner...")

	env, err := config.LoadMigrate()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgstore.NewClient(ctx, env.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	log.Println("Connected to database. Running migrations...")
	if err := pgstore.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migration runner finished successfully.")
}
