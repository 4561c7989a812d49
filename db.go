package main

import (
	"context"

	"github.com/cwiatrak/cityweather/internal/database"
	_ "github.com/lib/pq"
)

// ConnectDB establishes a connection to the PostgreSQL database using the
// connection string in the apiConfig struct and initializes the dbQueries
// field with the sqlc-generated Queries struct. It should be called during
// startup so an unreachable database is caught before any request is served.
func (cfg *apiConfig) ConnectDB() error {
	db, err := cfg.newDBClientFunc("postgres", cfg.dbURL)
	if err != nil {
		cfg.logger.Error("couldn't prepare connection to database", "error", err)
		return err
	}
	if err := db.Ping(); err != nil {
		cfg.logger.Error("couldn't connect to database", "error", err)
		return err
	}
	cfg.dbQueries = database.New(db)
	cfg.logger.Info("connected to database")
	return nil
}

// dbQuerier is an interface that abstracts all database operations.
// It is implemented by the sqlc-generated Queries struct, allowing for
// dependency injection and easy mocking in tests.
type dbQuerier interface {
	DeleteAllCities(ctx context.Context) error
	DeleteCity(ctx context.Context, arg database.DeleteCityParams) error
	GetCity(ctx context.Context, arg database.GetCityParams) (database.City, error)
	GetProfile(ctx context.Context, uid string) (database.Profile, error)
	ListCitiesByUser(ctx context.Context, userID string) ([]database.City, error)
	UpsertCity(ctx context.Context, arg database.UpsertCityParams) (database.City, error)
	UpsertProfile(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error)
}
