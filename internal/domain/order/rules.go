package order

import "github.com/shopspring/decimal"

// MaxOrderTotal is the ceiling on the sum of price * quantity. An order whose
// total equals the ceiling is accepted.
var MaxOrderTotal = decimal.NewFromInt(500_000)

// Rule identifies a business rule an order can break.
type Rule string

const (
	RuleCustomerInactive    Rule = "customer_inactive"
	RuleNoItems             Rule = "no_items"
	RuleNonPositivePrice    Rule = "non_positive_price"
	RuleNonPositiveQuantity Rule = "non_positive_quantity"
	RuleTotalLimit          Rule = "total_limit"
)

// Violation describes the first rule an order broke.
type Violation struct {
	Rule    Rule
	Message string
	// Index is the offending item position for item rules, -1 otherwise.
	Index int
}

// evaluate runs the order rules in their fixed order and returns the first
// violation found. Both the Evaluator and the Service go through it and only
// differ in the error kind they wrap the violation in.
func evaluate(o *Order, c Customer) (Violation, bool) {
	if !c.Active {
		return Violation{Rule: RuleCustomerInactive, Message: "Customer is inactive", Index: -1}, false
	}

	if o == nil || len(o.items) == 0 {
		return Violation{Rule: RuleNoItems, Message: "Order has no items", Index: -1}, false
	}

	total := decimal.Zero
	for i, item := range o.items {
		if !item.Price.IsPositive() {
			return Violation{Rule: RuleNonPositivePrice, Message: "Item price must be greater than 0", Index: i}, false
		}
		if item.Quantity <= 0 {
			return Violation{Rule: RuleNonPositiveQuantity, Message: "Item quantity must be greater than 0", Index: i}, false
		}
		total = total.Add(item.LineTotal())
	}

	if total.GreaterThan(MaxOrderTotal) {
		return Violation{Rule: RuleTotalLimit, Message: "Order total cannot exceed limit", Index: -1}, false
	}

	return Violation{}, true
}
