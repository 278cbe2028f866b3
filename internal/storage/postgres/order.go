package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SUVA-tech/order-processing-engine/internal/domain/order"
)

const (
	orderColumns = `id, customer_id, status, cancellation_reason, created_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE id = $1`

	listOrdersByCustomerSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE customer_id = $1 ORDER BY created_at, id`

	listOrderItemsSQL = `SELECT order_id, product_id, price, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`

	upsertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			status = EXCLUDED.status,
			cancellation_reason = EXCLUDED.cancellation_reason`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, position, product_id, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Items
// live in order_items with NUMERIC prices scanned as decimal.Decimal.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

type orderRow struct {
	ID                 string
	CustomerID         string
	Status             string
	CancellationReason *string
	CreatedAt          time.Time
}

type itemRow struct {
	OrderID   string
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// FindByID returns the order with the given id, or nil when it does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[orderRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	orders, err := r.withItems(ctx, []orderRow{row})
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return orders[0], nil
}

// FindByCustomerID returns all orders placed by the customer, oldest first.
func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %q: %w", customerID, err)
	}

	orderRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[orderRow])
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %q: %w", customerID, err)
	}
	if len(orderRows) == 0 {
		return nil, nil
	}

	orders, err := r.withItems(ctx, orderRows)
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %q: %w", customerID, err)
	}
	return orders, nil
}

// withItems loads the items of every row in one query and rebuilds the orders
// in row order.
func (r *OrderRepository) withItems(ctx context.Context, orderRows []orderRow) ([]*order.Order, error) {
	ids := make([]string, len(orderRows))
	for i, row := range orderRows {
		ids[i] = row.ID
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	itemRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[itemRow])
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}

	items := make(map[string][]order.Item, len(orderRows))
	for _, it := range itemRows {
		items[it.OrderID] = append(items[it.OrderID], order.Item{
			ProductID: it.ProductID,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	orders := make([]*order.Order, len(orderRows))
	for i, row := range orderRows {
		var reason string
		if row.CancellationReason != nil {
			reason = *row.CancellationReason
		}
		o, err := order.Restore(row.ID, row.CustomerID, items[row.ID], order.Status(row.Status), reason, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("restoring order %q: %w", row.ID, err)
		}
		orders[i] = o
	}
	return orders, nil
}

// Save inserts the order or overwrites the stored copy, replacing its items,
// in a single transaction.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	var reason *string
	if o.Status() == order.StatusCancelled {
		v := o.CancellationReason()
		reason = &v
	}

	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertOrderSQL,
			o.ID, o.CustomerID, string(o.Status()), reason, createdAt,
		); err != nil {
			return fmt.Errorf("upserting order: %w", err)
		}

		if _, err := tx.Exec(ctx, deleteOrderItemsSQL, o.ID); err != nil {
			return fmt.Errorf("clearing order items: %w", err)
		}

		batch := &pgx.Batch{}
		for i, item := range o.Items() {
			batch.Queue(insertOrderItemSQL, o.ID, i, item.ProductID, item.Price, item.Quantity)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving order %q: %w", o.ID, err)
	}

	return nil
}
