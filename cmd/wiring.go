package cmd

import (
	"context"
	"fmt"

	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/Rk346278/real-time-ambulance/internal/repositories/memory"
	"github.com/Rk346278/real-time-ambulance/internal/repositories/postgres"
	"github.com/Rk346278/real-time-ambulance/internal/route"
	"github.com/Rk346278/real-time-ambulance/internal/tracking"
)

func newSession(cfg *models.Config, publisher broadcast.Publisher) (*tracking.Session, route.Deriver, error) {
	deriver, err := route.NewDeriver(cfg.Checkpoints)
	if err != nil {
		return nil, nil, err
	}
	session := tracking.NewSession(tracking.Options{
		Deriver:     deriver,
		Threshold:   tracking.ThresholdFromConfig(cfg.Tracking),
		YellowDelay: cfg.Tracking.YellowDelay,
		GreenDwell:  cfg.Tracking.GreenDwell,
		Publisher:   publisher,
		Logger:      logger,
	})
	return session, deriver, nil
}

type stores struct {
	drivers repositories.DriverUpdateRepository
	nurses  repositories.NurseUpdateRepository
	close   func()
}

// openStores connects to Postgres when a DSN is configured and falls back to
// process memory otherwise.
func openStores(ctx context.Context, cfg *models.Config, requireDatabase bool) (*stores, error) {
	if cfg.Database.DSN == "" {
		if requireDatabase {
			return nil, fmt.Errorf("database.dsn is not set")
		}
		logger.Warn("no database configured, records are kept in memory only")
		return &stores{
			drivers: memory.NewDriverUpdateRepository(),
			nurses:  memory.NewNurseUpdateRepository(),
			close:   func() {},
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		drivers: postgres.NewDriverUpdateRepository(pool),
		nurses:  postgres.NewNurseUpdateRepository(pool),
		close:   pool.Close,
	}, nil
}
