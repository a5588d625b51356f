package matches

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUserNotFound is returned when a preference row points at a missing user.
var ErrUserNotFound = errors.New("user not found")

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the storage surface of the match notifier: preference rows,
// user email resolution, and the user/car dedupe log.
type Repository interface {
	ListPrefs(ctx context.Context) ([]BuyerPrefs, error)
	UserEmail(ctx context.Context, userID string) (string, error)
	NotifiedUsers(ctx context.Context, carID string) (map[string]bool, error)
	LogNotified(ctx context.Context, userID, carID string) error
}

// PostgresRepository reads buyer_prefs/users and writes notify_log.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a matches repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("matches: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// ListPrefs loads every stored buyer preference row.
func (r *PostgresRepository) ListPrefs(ctx context.Context) ([]BuyerPrefs, error) {
	query := `
		SELECT user_id, name, notify_email, brands, models, fuel, gearbox, body,
		       budget_min, budget_max, year_min, year_max, km_max
		FROM buyer_prefs
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("matches: select prefs: %w", err)
	}
	defer rows.Close()

	var prefs []BuyerPrefs
	for rows.Next() {
		var p BuyerPrefs
		if err := rows.Scan(
			&p.UserID,
			&p.Name,
			&p.NotifyEmail,
			&p.Brands,
			&p.Models,
			&p.Fuel,
			&p.Gearbox,
			&p.Body,
			&p.BudgetMin,
			&p.BudgetMax,
			&p.YearMin,
			&p.YearMax,
			&p.KMMax,
		); err != nil {
			return nil, fmt.Errorf("matches: scan pref: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("matches: iterate prefs: %w", err)
	}
	return prefs, nil
}

// UserEmail resolves the owning user's email address.
func (r *PostgresRepository) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("matches: select user email: %w", err)
	}
	return email, nil
}

// NotifiedUsers returns the user ids already notified for this car.
func (r *PostgresRepository) NotifiedUsers(ctx context.Context, carID string) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM notify_log WHERE car_id = $1`, carID)
	if err != nil {
		return nil, fmt.Errorf("matches: select notify log: %w", err)
	}
	defer rows.Close()

	notified := make(map[string]bool)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("matches: scan notify log: %w", err)
		}
		notified[userID] = true
	}
	return notified, rows.Err()
}

// LogNotified appends a dedupe row; repeated pairs are merged, not errors.
func (r *PostgresRepository) LogNotified(ctx context.Context, userID, carID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notify_log (user_id, car_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, carID)
	if err != nil {
		return fmt.Errorf("matches: insert notify log: %w", err)
	}
	return nil
}
