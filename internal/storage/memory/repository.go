// Package memory provides in-process order and customer storage.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/SUVA-tech/order-processing-engine/internal/domain/order"
)

var (
	_ order.Repository         = (*OrderRepository)(nil)
	_ order.CustomerRepository = (*CustomerRepository)(nil)
)

// OrderRepository is an in-memory order store. It hands out copies so callers
// cannot mutate stored orders.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: map[string]*order.Order{}}
}

// Save stores a copy of o, replacing any order with the same id.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	if o == nil {
		return errors.New("order is nil")
	}
	if o.ID == "" {
		return errors.New("order id is empty")
	}
	clone, err := cloneOrder(o)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[clone.ID] = clone
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o)
}

// FindByCustomerID returns the customer's orders, oldest first.
func (r *OrderRepository) FindByCustomerID(_ context.Context, customerID string) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*order.Order
	for _, o := range r.orders {
		if o.CustomerID != customerID {
			continue
		}
		clone, err := cloneOrder(o)
		if err != nil {
			return nil, err
		}
		list = append(list, clone)
	}
	slices.SortFunc(list, func(a, b *order.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func cloneOrder(o *order.Order) (*order.Order, error) {
	return order.Restore(o.ID, o.CustomerID, o.Items(), o.Status(), o.CancellationReason(), o.CreatedAt)
}

// CustomerRepository is an in-memory customer store.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]order.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: map[string]order.Customer{}}
}

func (r *CustomerRepository) Save(_ context.Context, c order.Customer) error {
	if c.ID == "" {
		return errors.New("customer id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

// FindByID returns order.ErrCustomerNotFound for unknown ids.
func (r *CustomerRepository) FindByID(_ context.Context, id string) (*order.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, order.ErrCustomerNotFound
	}
	return &c, nil
}
