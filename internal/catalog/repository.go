package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository loads cars for matching and deep-link construction.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Car, error)
}

// PostgresRepository reads the cars table.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a catalog repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// GetByID fetches one car.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Car, error) {
	query := `
		SELECT id, COALESCE(slug, ''), brand, model,
		       COALESCE(fuel, ''), COALESCE(gearbox, ''), COALESCE(body, ''),
		       price, year, km
		FROM cars
		WHERE id = $1
	`
	var car Car
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&car.ID,
		&car.Slug,
		&car.Brand,
		&car.Model,
		&car.Fuel,
		&car.Gearbox,
		&car.Body,
		&car.Price,
		&car.Year,
		&car.KM,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("catalog: select car: %w", err)
	}
	return &car, nil
}
