package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Service encapsulates order lifecycle operations: creation validation,
// cancellation and retrieval.
type Service struct {
	orders Repository
}

// NewService creates an order Service reading from the given Repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// CreateOrder validates the order for the customer. It runs the same rules as
// the Evaluator but reports failures as *InvalidOrderError. The order is not
// persisted.
func (s *Service) CreateOrder(o *Order, c Customer) error {
	if v, ok := evaluate(o, c); !ok {
		return &InvalidOrderError{Rule: v.Rule, Message: v.Message}
	}
	return nil
}

// CancelOrder cancels the order in place, recording reason. The reason must
// contain a non-whitespace character and the order must still be Created.
func (s *Service) CancelOrder(o *Order, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return invalidOrder("Cancellation reason is mandatory")
	}
	if o == nil {
		return invalidOrder("Order is required")
	}
	if err := o.Cancel(reason); err != nil {
		if errors.Is(err, ErrInvalidTransition) && o.Status() == StatusCancelled {
			return invalidOrder("Order is already cancelled")
		}
		return &InvalidOrderError{Message: err.Error()}
	}
	return nil
}

// GetOrderByID returns the stored order with the given id, or an
// *OrderNotFoundError when none exists.
func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, errors.Wrap(err, "find order")
	}
	if o == nil {
		return nil, &OrderNotFoundError{OrderID: orderID}
	}
	return o, nil
}

// GetOrdersByCustomerID returns the customer's stored orders. A blank
// customer id is an *InvalidOrderError; no orders is an *OrderNotFoundError.
func (s *Service) GetOrdersByCustomerID(ctx context.Context, customerID string) ([]*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, invalidOrder("Customer ID cannot be null or empty")
	}

	orders, err := s.orders.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "find customer orders")
	}
	if len(orders) == 0 {
		return nil, &OrderNotFoundError{CustomerID: customerID}
	}
	return orders, nil
}
