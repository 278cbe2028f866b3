//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SUVA-tech/order-processing-engine/internal/domain/order"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func TestRepositories(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	orders := NewOrderRepository(pool)
	customers := NewCustomerRepository(pool)

	t.Run("customer round trip", func(t *testing.T) {
		_, err := customers.FindByID(ctx, "c1")
		require.ErrorIs(t, err, order.ErrCustomerNotFound)

		require.NoError(t, customers.Save(ctx, order.Customer{ID: "c1", Active: true}))
		require.NoError(t, customers.Save(ctx, order.Customer{ID: "c1", Active: true, Premium: true}))

		c, err := customers.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, c.Active)
		assert.True(t, c.Premium)
	})

	t.Run("missing order is nil", func(t *testing.T) {
		o, err := orders.FindByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, o)
	})

	t.Run("order round trip", func(t *testing.T) {
		base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		first := order.New("o1", "c1")
		first.CreatedAt = base
		first.AddItem(order.Item{ProductID: "p1", Price: decimal.RequireFromString("199.99"), Quantity: 2})
		first.AddItem(order.Item{ProductID: "p2", Price: decimal.RequireFromString("0.01"), Quantity: 1})
		require.NoError(t, orders.Save(ctx, first))

		second := order.New("o2", "c1")
		second.CreatedAt = base.Add(time.Minute)
		second.AddItem(order.Item{ProductID: "p3", Price: decimal.NewFromInt(10), Quantity: 1})
		require.NoError(t, second.Cancel("duplicate"))
		require.NoError(t, orders.Save(ctx, second))

		got, err := orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, order.StatusCreated, got.Status())
		assert.Empty(t, got.CancellationReason())
		require.Len(t, got.Items(), 2)
		assert.Equal(t, "p1", got.Items()[0].ProductID)
		assert.True(t, decimal.RequireFromString("400.00").Equal(got.Total()), "total %s", got.Total())
		assert.True(t, base.Equal(got.CreatedAt))

		list, err := orders.FindByCustomerID(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "o1", list[0].ID)
		assert.Equal(t, order.StatusCancelled, list[1].Status())
		assert.Equal(t, "duplicate", list[1].CancellationReason())
	})

	t.Run("save overwrites status", func(t *testing.T) {
		o, err := orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		require.NoError(t, o.Cancel("customer request"))
		require.NoError(t, orders.Save(ctx, o))

		got, err := orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status())
		assert.Equal(t, "customer request", got.CancellationReason())
	})

	t.Run("numeric prices keep precision", func(t *testing.T) {
		o := order.New("o-precise", "c2")
		o.AddItem(order.Item{ProductID: "p1", Price: decimal.RequireFromString("0.125"), Quantity: 3})
		o.AddItem(order.Item{ProductID: "p2", Price: decimal.RequireFromString("123456789.987654"), Quantity: 1})
		require.NoError(t, orders.Save(ctx, o))

		var stored decimal.Decimal
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT price FROM order_items WHERE order_id = $1 AND position = 1`, "o-precise",
		).Scan(&stored))
		assert.True(t, decimal.RequireFromString("123456789.987654").Equal(stored), "stored %s", stored)

		var typ string
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT pg_typeof(price)::text FROM order_items WHERE order_id = $1 LIMIT 1`, "o-precise",
		).Scan(&typ))
		assert.Equal(t, "numeric", typ)

		got, err := orders.FindByID(ctx, "o-precise")
		require.NoError(t, err)
		items := got.Items()
		require.Len(t, items, 2)
		assert.True(t, decimal.RequireFromString("0.125").Equal(items[0].Price), "price %s", items[0].Price)
		assert.True(t, o.Total().Equal(got.Total()), "total %s, want %s", got.Total(), o.Total())
	})

	t.Run("save replaces items", func(t *testing.T) {
		o := order.New("o-replace", "c3")
		o.AddItem(order.Item{ProductID: "a", Price: decimal.NewFromInt(1), Quantity: 1})
		o.AddItem(order.Item{ProductID: "b", Price: decimal.NewFromInt(2), Quantity: 1})
		require.NoError(t, orders.Save(ctx, o))

		fewer, err := order.Restore("o-replace", "c3",
			[]order.Item{{ProductID: "c", Price: decimal.RequireFromString("9.50"), Quantity: 2}},
			order.StatusCreated, "", o.CreatedAt)
		require.NoError(t, err)
		require.NoError(t, orders.Save(ctx, fewer))

		got, err := orders.FindByID(ctx, "o-replace")
		require.NoError(t, err)
		require.Len(t, got.Items(), 1)
		assert.Equal(t, "c", got.Items()[0].ProductID)
		assert.True(t, decimal.NewFromInt(19).Equal(got.Total()))
	})

	t.Run("order without items", func(t *testing.T) {
		require.NoError(t, orders.Save(ctx, order.New("o-empty", "c4")))

		got, err := orders.FindByID(ctx, "o-empty")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.Items())
	})

	t.Run("service over postgres", func(t *testing.T) {
		svc := order.NewService(orders)

		_, err := svc.GetOrdersByCustomerID(ctx, "nobody")
		var notFound *order.OrderNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "No orders found for customer ID: nobody", notFound.Error())
	})
}
