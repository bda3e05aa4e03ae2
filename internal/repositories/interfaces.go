package repositories

import (
	"context"
	"fmt"

	"github.com/Rk346278/real-time-ambulance/internal/models"
)

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 100

type DriverUpdateRepository interface {
	BulkCreate(ctx context.Context, updates []*models.DriverUpdate) error
	Create(ctx context.Context, update *models.DriverUpdate) error
	// ListRecent returns up to limit updates, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.DriverUpdate, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type NurseUpdateRepository interface {
	BulkCreate(ctx context.Context, updates []*models.NurseUpdate) error
	Create(ctx context.Context, update *models.NurseUpdate) error
	// ListRecent returns up to limit updates ordered by severity score, then
	// newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.NurseUpdate, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// ClearAll removes every nurse and driver update.
func ClearAll(ctx context.Context, drivers DriverUpdateRepository, nurses NurseUpdateRepository) error {
	if err := nurses.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear nurse updates: %w", err)
	}
	if err := drivers.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear driver updates: %w", err)
	}
	return nil
}

// NormalizeLimit maps non-positive limits to DefaultListLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
