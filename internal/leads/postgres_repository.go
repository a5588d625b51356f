package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the repository needs. It lets tests
// substitute a pgxmock pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository inserts leads directly into the relational database.
// This is the fallback access path behind the data API.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Insert creates a new row and returns the database-generated id.
func (r *PostgresRepository) Insert(ctx context.Context, lead *Lead) (string, error) {
	query := `
		INSERT INTO leads (name, email, phone, message, car_of_interest, car_id, page_url, user_agent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRow(ctx, query,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		lead.CarOfInterest,
		lead.CarID,
		lead.PageURL,
		lead.UserAgent,
		lead.Status,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("leads: insert failed: %w", err)
	}
	if id == "" {
		return "", ErrNoInsertedID
	}
	return id, nil
}
