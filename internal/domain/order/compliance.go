package order

// Evaluator checks candidate orders against the compliance rules. It is
// stateless; the zero value is ready to use.
type Evaluator struct{}

// NewEvaluator returns an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// ValidateOrder returns a *ComplianceViolationError describing the first rule
// the order breaks for the given customer, or nil when all rules pass.
func (e *Evaluator) ValidateOrder(o *Order, c Customer) error {
	if v, ok := evaluate(o, c); !ok {
		return &ComplianceViolationError{Violation: v}
	}
	return nil
}
