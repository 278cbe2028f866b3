package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/SUVA-tech/order-processing-engine/internal/audit"
	"github.com/SUVA-tech/order-processing-engine/internal/storage/postgres"
)

// Run connects to the order store and audits the configured customers. It is
// the single wiring point for the audit job.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.Int("customers", len(cfg.Customers)),
		zap.Bool("festival_offer", cfg.FestivalOffer),
	)

	var maxConns int32
	if cfg.Concurrency > 0 {
		maxConns = int32(cfg.Concurrency) + 1
	}
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, maxConns)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
	}

	auditor, err := audit.New(
		postgres.NewCustomerRepository(pool),
		postgres.NewOrderRepository(pool),
		audit.Options{
			FestivalOffer:  cfg.FestivalOffer,
			Concurrency:    cfg.Concurrency,
			Logger:         zctx.From(ctx),
			MeterProvider:  m.MeterProvider(),
			TracerProvider: m.TracerProvider(),
		},
	)
	if err != nil {
		return errors.Wrap(err, "create auditor")
	}

	report, err := auditor.Run(ctx, cfg.Customers)
	if err != nil {
		return errors.Wrap(err, "audit")
	}

	lg.Info("Audit finished",
		zap.String("run_id", report.RunID),
		zap.Int("orders", len(report.Findings)),
		zap.Int("violations", report.Violations),
		zap.Int("skipped", len(report.Skipped)),
	)

	return nil
}
