package postgres

import (
	"context"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NurseUpdateRepository struct {
	pool *pgxpool.Pool
}

func NewNurseUpdateRepository(pool *pgxpool.Pool) *NurseUpdateRepository {
	return &NurseUpdateRepository{pool: pool}
}

const insertNurseUpdate = `
        INSERT INTO nurse_updates (
            id, patient_name, age, notes, severity_score,
            condition_severity, immediate_requirement, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func nurseUpdateArgs(u *models.NurseUpdate) []any {
	return []any{
		u.ID,
		u.PatientName,
		u.Age,
		u.Notes,
		u.SeverityScore,
		u.ConditionSeverity,
		u.ImmediateRequirement,
		u.CreatedAt,
	}
}

// BulkCreate inserts updates in one round trip using a pgx batch.
func (r *NurseUpdateRepository) BulkCreate(ctx context.Context, updates []*models.NurseUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(insertNurseUpdate, nurseUpdateArgs(u)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *NurseUpdateRepository) Create(ctx context.Context, u *models.NurseUpdate) error {
	_, err := r.pool.Exec(ctx, insertNurseUpdate, nurseUpdateArgs(u)...)
	return err
}

func (r *NurseUpdateRepository) ListRecent(ctx context.Context, limit int) ([]*models.NurseUpdate, error) {
	query := `
        SELECT
            id, patient_name, age, notes, severity_score,
            condition_severity, immediate_requirement, created_at
        FROM nurse_updates
        ORDER BY severity_score DESC, created_at DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, repositories.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]*models.NurseUpdate, 0)
	for rows.Next() {
		u := &models.NurseUpdate{}
		err := rows.Scan(
			&u.ID,
			&u.PatientName,
			&u.Age,
			&u.Notes,
			&u.SeverityScore,
			&u.ConditionSeverity,
			&u.ImmediateRequirement,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (r *NurseUpdateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM nurse_updates").Scan(&count)
	return count, err
}

func (r *NurseUpdateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE nurse_updates")
	return err
}
