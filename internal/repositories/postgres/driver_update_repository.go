package postgres

import (
	"context"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DriverUpdateRepository struct {
	pool *pgxpool.Pool
}

func NewDriverUpdateRepository(pool *pgxpool.Pool) *DriverUpdateRepository {
	return &DriverUpdateRepository{pool: pool}
}

const insertDriverUpdate = `
        INSERT INTO driver_updates (id, from_location, to_location, created_at)
        VALUES ($1, $2, $3, $4)`

func (r *DriverUpdateRepository) BulkCreate(ctx context.Context, updates []*models.DriverUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		_, err = tx.Exec(ctx, insertDriverUpdate, u.ID, u.FromLocation, u.ToLocation, u.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *DriverUpdateRepository) Create(ctx context.Context, u *models.DriverUpdate) error {
	_, err := r.pool.Exec(ctx, insertDriverUpdate, u.ID, u.FromLocation, u.ToLocation, u.CreatedAt)
	return err
}

func (r *DriverUpdateRepository) ListRecent(ctx context.Context, limit int) ([]*models.DriverUpdate, error) {
	query := `
        SELECT id, from_location, to_location, created_at
        FROM driver_updates
        ORDER BY created_at DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, repositories.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]*models.DriverUpdate, 0)
	for rows.Next() {
		u := &models.DriverUpdate{}
		if err := rows.Scan(&u.ID, &u.FromLocation, &u.ToLocation, &u.CreatedAt); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (r *DriverUpdateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM driver_updates").Scan(&count)
	return count, err
}

func (r *DriverUpdateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE driver_updates")
	return err
}
