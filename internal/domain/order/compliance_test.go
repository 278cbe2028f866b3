package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_ValidateOrder(t *testing.T) {
	tests := []struct {
		name      string
		order     *Order
		customer  Customer
		wantRule  Rule
		wantMsg   string
		wantIndex int
	}{
		{
			name:      "inactive customer",
			order:     newOrderWith(item("100", 1)),
			customer:  inactiveCustomer,
			wantRule:  RuleCustomerInactive,
			wantMsg:   "Customer is inactive",
			wantIndex: -1,
		},
		{
			name:      "inactive customer wins over empty items",
			order:     newOrderWith(),
			customer:  inactiveCustomer,
			wantRule:  RuleCustomerInactive,
			wantMsg:   "Customer is inactive",
			wantIndex: -1,
		},
		{
			name:      "no items",
			order:     newOrderWith(),
			customer:  activeCustomer,
			wantRule:  RuleNoItems,
			wantMsg:   "Order has no items",
			wantIndex: -1,
		},
		{
			name:      "zero price",
			order:     newOrderWith(item("0", 1)),
			customer:  activeCustomer,
			wantRule:  RuleNonPositivePrice,
			wantMsg:   "Item price must be greater than 0",
			wantIndex: 0,
		},
		{
			name:      "zero quantity",
			order:     newOrderWith(item("100", 0)),
			customer:  activeCustomer,
			wantRule:  RuleNonPositiveQuantity,
			wantMsg:   "Item quantity must be greater than 0",
			wantIndex: 0,
		},
		{
			name:      "negative quantity reported at its position",
			order:     newOrderWith(item("1", 1), item("2", 2), item("3", -1)),
			customer:  activeCustomer,
			wantRule:  RuleNonPositiveQuantity,
			wantMsg:   "Item quantity must be greater than 0",
			wantIndex: 2,
		},
		{
			name:      "items checked in sequence order",
			order:     newOrderWith(item("5", 0), item("0", 1)),
			customer:  activeCustomer,
			wantRule:  RuleNonPositiveQuantity,
			wantMsg:   "Item quantity must be greater than 0",
			wantIndex: 0,
		},
		{
			name:      "total above 5 lakh",
			order:     newOrderWith(item("600000", 1)),
			customer:  activeCustomer,
			wantRule:  RuleTotalLimit,
			wantMsg:   "Order total cannot exceed limit",
			wantIndex: -1,
		},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateOrder(tt.order, tt.customer)

			var cvErr *ComplianceViolationError
			require.ErrorAs(t, err, &cvErr)
			assert.ErrorIs(t, err, ErrComplianceViolation)
			assert.NotErrorIs(t, err, ErrInvalidOrder)
			assert.Equal(t, tt.wantRule, cvErr.Violation.Rule)
			assert.Equal(t, tt.wantMsg, cvErr.Error())
			assert.Equal(t, tt.wantIndex, cvErr.Violation.Index)
		})
	}
}

func TestEvaluator_Passes(t *testing.T) {
	e := NewEvaluator()

	tests := []struct {
		name  string
		order *Order
	}{
		{"single item", newOrderWith(item("100", 1))},
		{"fractional prices", newOrderWith(item("19.99", 3), item("0.01", 1))},
		{"total exactly at limit", newOrderWith(item("100000", 5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, e.ValidateOrder(tt.order, activeCustomer))
		})
	}
}

// Both validators must agree on every input; only the error kind differs.
func TestEvaluatorAndServiceAgree(t *testing.T) {
	orders := []*Order{
		nil,
		newOrderWith(),
		newOrderWith(item("100", 1)),
		newOrderWith(item("0", 1)),
		newOrderWith(item("-1", 2)),
		newOrderWith(item("100", 0)),
		newOrderWith(item("100", -3)),
		newOrderWith(item("500000", 1)),
		newOrderWith(item("500000.01", 1)),
		newOrderWith(item("125000", 4), item("1", 1)),
	}
	customers := []Customer{activeCustomer, inactiveCustomer}

	e := NewEvaluator()
	svc := NewService(&mockOrderRepo{})
	for _, c := range customers {
		for i, o := range orders {
			cErr := e.ValidateOrder(o, c)
			sErr := svc.CreateOrder(o, c)

			if cErr == nil {
				assert.NoError(t, sErr, "order %d active=%v", i, c.Active)
				continue
			}
			var cvErr *ComplianceViolationError
			var ioErr *InvalidOrderError
			require.ErrorAs(t, cErr, &cvErr)
			require.ErrorAs(t, sErr, &ioErr, "order %d active=%v", i, c.Active)
			assert.Equal(t, cvErr.Violation.Rule, ioErr.Rule)
			assert.Equal(t, cvErr.Violation.Message, ioErr.Message)
			if !c.Active {
				assert.Equal(t, RuleCustomerInactive, ioErr.Rule)
			}
		}
	}
}
