package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/SUVA-tech/order-processing-engine/internal/fixture"
	"github.com/SUVA-tech/order-processing-engine/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		fixturesFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&fixturesFile, "fixtures-file", "db/seed/orders.json", "path to customers and orders JSON file (.gz accepted)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, fixturesFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, fixturesFile string) error {
	slog.Info("reading fixtures file", slog.String("path", fixturesFile))

	set, err := fixture.Load(fixturesFile)
	if err != nil {
		return errors.Wrap(err, "load fixtures")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL, 0)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	customers := postgres.NewCustomerRepository(pool)
	slog.Info("upserting customers", slog.Int("count", len(set.Customers)))
	for _, c := range set.Customers {
		if err := customers.Save(ctx, c); err != nil {
			return errors.Wrapf(err, "upsert customer %s", c.ID)
		}
		slog.Info("upserted customer",
			slog.String("id", c.ID),
			slog.Bool("active", c.Active),
			slog.Bool("premium", c.Premium),
		)
	}

	orders := postgres.NewOrderRepository(pool)
	slog.Info("upserting orders", slog.Int("count", len(set.Orders)))
	for _, o := range set.Orders {
		if err := orders.Save(ctx, o); err != nil {
			return errors.Wrapf(err, "upsert order %s", o.ID)
		}
		slog.Info("upserted order",
			slog.String("id", o.ID),
			slog.String("customer_id", o.CustomerID),
			slog.String("status", o.Status().String()),
			slog.String("total", o.Total().StringFixed(2)),
		)
	}

	return nil
}
