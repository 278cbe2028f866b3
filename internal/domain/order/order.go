package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Customer is the party placing an order. Only Active is read by the order
// rules; Premium feeds the pricing premium flag.
type Customer struct {
	ID      string
	Active  bool
	Premium bool
}

// Item represents a single line item in an order. Positivity of Price and
// Quantity is enforced by the order rules, not at construction.
type Item struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// LineTotal returns price * quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer order. It exclusively owns its items and keeps them in
// insertion order.
type Order struct {
	ID         string
	CustomerID string
	CreatedAt  time.Time

	items              []Item
	status             Status
	cancellationReason string
}

// New creates an order in the Created status with no items.
func New(id, customerID string) *Order {
	return &Order{
		ID:         id,
		CustomerID: customerID,
		CreatedAt:  time.Now().UTC(),
		status:     StatusCreated,
	}
}

// ErrInvalidRecord is returned by Restore for stored state no order could
// have reached through New and Cancel.
var ErrInvalidRecord = errors.New("order record is invalid")

// Restore rebuilds an order loaded from storage. It rejects unknown statuses,
// missing ids and cancelled orders without a reason.
func Restore(
	id, customerID string,
	items []Item,
	status Status,
	cancellationReason string,
	createdAt time.Time,
) (*Order, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(id) == "":
		return nil, errors.Wrap(ErrInvalidRecord, "order id is empty")
	case strings.TrimSpace(customerID) == "":
		return nil, errors.Wrapf(ErrInvalidRecord, "order %s: customer id is empty", id)
	case status == StatusCancelled && strings.TrimSpace(cancellationReason) == "":
		return nil, errors.Wrapf(ErrInvalidRecord, "order %s: cancelled without a reason", id)
	}
	o := &Order{
		ID:         id,
		CustomerID: customerID,
		CreatedAt:  createdAt,
		items:      append([]Item(nil), items...),
		status:     status,
	}
	if status == StatusCancelled {
		o.cancellationReason = cancellationReason
	}
	return o, nil
}

// AddItem appends an item to the order.
func (o *Order) AddItem(item Item) {
	o.items = append(o.items, item)
}

// Items returns a copy of the order items in insertion order.
func (o *Order) Items() []Item {
	if o == nil || len(o.items) == 0 {
		return nil
	}
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Status returns the current lifecycle state. A zero-value order is Created.
func (o *Order) Status() Status {
	if o.status == "" {
		return StatusCreated
	}
	return o.status
}

// CancellationReason returns the reason recorded on cancellation, or "".
func (o *Order) CancellationReason() string {
	return o.cancellationReason
}

// Total returns the sum of price * quantity over all items.
func (o *Order) Total() decimal.Decimal {
	sum := decimal.Zero
	if o == nil {
		return sum
	}
	for _, item := range o.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Cancel moves the order to Cancelled and records the reason. The reason is
// not validated here; the Service enforces that it is present.
func (o *Order) Cancel(reason string) error {
	next, err := o.Status().Cancel()
	if err != nil {
		return err
	}
	o.status = next
	o.cancellationReason = reason
	return nil
}

// Repository provides read access to stored orders.
type Repository interface {
	// FindByID returns the order with the given id. A nil order with a nil
	// error means no such order exists.
	FindByID(ctx context.Context, orderID string) (*Order, error)
	// FindByCustomerID returns the customer's orders. The result may be nil.
	FindByCustomerID(ctx context.Context, customerID string) ([]*Order, error)
}

// CustomerRepository provides lookup of customers by id.
type CustomerRepository interface {
	FindByID(ctx context.Context, customerID string) (*Customer, error)
}
