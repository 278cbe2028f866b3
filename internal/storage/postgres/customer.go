package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SUVA-tech/order-processing-engine/internal/domain/order"
)

const (
	getCustomerByIDSQL = `SELECT id, active, premium FROM customers WHERE id = $1`

	upsertCustomerSQL = `INSERT INTO customers (id, active, premium)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET active = EXCLUDED.active, premium = EXCLUDED.premium`
)

var _ order.CustomerRepository = (*CustomerRepository)(nil)

// CustomerRepository implements order.CustomerRepository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// FindByID looks up a customer by id.
// Returns order.ErrCustomerNotFound when no such customer exists.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*order.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}
	return &c, nil
}

// Save inserts the customer or updates its flags.
func (r *CustomerRepository) Save(ctx context.Context, c order.Customer) error {
	if _, err := r.pool.Exec(ctx, upsertCustomerSQL, c.ID, c.Active, c.Premium); err != nil {
		return fmt.Errorf("saving customer %q: %w", c.ID, err)
	}
	return nil
}

func scanCustomer(row pgx.CollectableRow) (order.Customer, error) {
	var c order.Customer
	err := row.Scan(&c.ID, &c.Active, &c.Premium)
	return c, err
}
