package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for the three failure kinds. The typed errors below unwrap
// to them, so callers can match with errors.Is or inspect with errors.As.
var (
	ErrComplianceViolation = errors.New("compliance violation")
	ErrInvalidOrder        = errors.New("invalid order")
	ErrOrderNotFound       = errors.New("order not found")

	// ErrCustomerNotFound is returned by CustomerRepository implementations.
	ErrCustomerNotFound = errors.New("customer not found")
)

// ComplianceViolationError is raised by the Evaluator when an order breaks a
// business rule.
type ComplianceViolationError struct {
	Violation Violation
}

func (e *ComplianceViolationError) Error() string {
	return e.Violation.Message
}

func (e *ComplianceViolationError) Unwrap() error {
	return ErrComplianceViolation
}

// InvalidOrderError is raised by the Service for rule failures and malformed
// input. Rule is empty for input-shape failures.
type InvalidOrderError struct {
	Rule    Rule
	Message string
}

func (e *InvalidOrderError) Error() string {
	return e.Message
}

func (e *InvalidOrderError) Unwrap() error {
	return ErrInvalidOrder
}

// OrderNotFoundError indicates a lookup by order id or customer id found nothing.
type OrderNotFoundError struct {
	OrderID    string
	CustomerID string
}

func (e *OrderNotFoundError) Error() string {
	if e.CustomerID != "" {
		return fmt.Sprintf("No orders found for customer ID: %s", e.CustomerID)
	}
	return fmt.Sprintf("Order not found for ID: %s", e.OrderID)
}

func (e *OrderNotFoundError) Unwrap() error {
	return ErrOrderNotFound
}

func invalidOrder(message string) *InvalidOrderError {
	return &InvalidOrderError{Message: message}
}
