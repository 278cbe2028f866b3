package audit

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type auditMetrics struct {
	audited    metric.Int64Counter
	violations metric.Int64Counter
	skipped    metric.Int64Counter
}

func newAuditMetrics(m metric.Meter) (auditMetrics, error) {
	audited, err := m.Int64Counter("orders.audit.audited",
		metric.WithDescription("Number of stored orders audited"))
	if err != nil {
		return auditMetrics{}, errors.Wrap(err, "audited counter")
	}
	violations, err := m.Int64Counter("orders.audit.violations",
		metric.WithDescription("Number of open orders failing compliance"))
	if err != nil {
		return auditMetrics{}, errors.Wrap(err, "violations counter")
	}
	skipped, err := m.Int64Counter("orders.audit.skipped_customers",
		metric.WithDescription("Number of customers skipped by the audit"))
	if err != nil {
		return auditMetrics{}, errors.Wrap(err, "skipped counter")
	}
	return auditMetrics{audited: audited, violations: violations, skipped: skipped}, nil
}

func (m auditMetrics) recordAudited(ctx context.Context, f Finding) {
	m.audited.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(f.Status))))
	if f.Violation != nil {
		m.violations.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", string(f.Violation.Rule))))
	}
}

func (m auditMetrics) recordSkipped(ctx context.Context, reason SkipReason) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}
