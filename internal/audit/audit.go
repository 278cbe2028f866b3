// Package audit re-checks stored orders against the compliance rules and
// prices the ones still open.
package audit

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SUVA-tech/order-processing-engine/internal/domain/order"
	"github.com/SUVA-tech/order-processing-engine/internal/domain/pricing"
)

const instrumentationName = "github.com/SUVA-tech/order-processing-engine/internal/audit"

// SkipReason explains why a customer produced no findings.
type SkipReason string

const (
	SkipUnknownCustomer SkipReason = "unknown customer"
	SkipNoOrders        SkipReason = "no orders"
	SkipInvalidID       SkipReason = "invalid customer id"
)

// Finding is the audit result for one stored order.
type Finding struct {
	OrderID    string
	CustomerID string
	Status     order.Status
	Total      decimal.Decimal
	// Violation is set when an open order no longer passes the rules.
	Violation *order.Violation
	// Quote is set for open orders that pass the rules.
	Quote *pricing.Quote
}

// Skipped records a customer the audit could not evaluate.
type Skipped struct {
	CustomerID string
	Reason     SkipReason
}

// Report summarizes one audit run.
type Report struct {
	RunID      string
	Findings   []Finding
	Skipped    []Skipped
	Violations int
	Cancelled  int
}

// Options configure an Auditor. Zero values select defaults.
type Options struct {
	Policy        pricing.Policy
	FestivalOffer bool
	// Concurrency bounds the number of customers audited at once.
	Concurrency    int
	Logger         *zap.Logger
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Auditor walks customers' stored orders.
type Auditor struct {
	customers order.CustomerRepository
	orders    *order.Service
	evaluator *order.Evaluator

	policy      pricing.Policy
	festival    bool
	concurrency int

	lg      *zap.Logger
	tracer  trace.Tracer
	metrics auditMetrics
}

// New creates an Auditor reading customers and orders from the given
// repositories.
func New(customers order.CustomerRepository, orders order.Repository, opts Options) (*Auditor, error) {
	if opts.Policy.Tiers == nil && opts.Policy.TaxRate.IsZero() {
		opts.Policy = pricing.DefaultPolicy
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}

	m, err := newAuditMetrics(opts.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	return &Auditor{
		customers:   customers,
		orders:      order.NewService(orders),
		evaluator:   order.NewEvaluator(),
		policy:      opts.Policy,
		festival:    opts.FestivalOffer,
		concurrency: opts.Concurrency,
		lg:          opts.Logger,
		tracer:      opts.TracerProvider.Tracer(instrumentationName),
		metrics:     m,
	}, nil
}

// Run audits every listed customer. Missing customers and customers without
// orders are reported as skipped; storage failures abort the run.
// Findings keep the order of customerIDs.
func (a *Auditor) Run(ctx context.Context, customerIDs []string) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	ctx, span := a.tracer.Start(ctx, "Auditor.Run", trace.WithAttributes(
		attribute.String("audit.run_id", report.RunID),
		attribute.Int("audit.customers", len(customerIDs)),
	))
	defer span.End()

	lg := a.lg.With(zap.String("run_id", report.RunID))
	lg.Info("Starting audit", zap.Int("customers", len(customerIDs)))

	results := make([]customerResult, len(customerIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, id := range customerIDs {
		g.Go(func() error {
			res, err := a.auditCustomer(gctx, lg, id)
			if err != nil {
				return errors.Wrapf(err, "audit customer %q", id)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		lg.Error("Audit failed", zap.Error(err))
		return Report{}, err
	}

	for i, res := range results {
		if res.skip != "" {
			report.Skipped = append(report.Skipped, Skipped{CustomerID: customerIDs[i], Reason: res.skip})
			continue
		}
		for _, f := range res.findings {
			switch {
			case f.Violation != nil:
				report.Violations++
			case f.Status == order.StatusCancelled:
				report.Cancelled++
			}
			report.Findings = append(report.Findings, f)
		}
	}

	span.SetAttributes(
		attribute.Int("audit.orders", len(report.Findings)),
		attribute.Int("audit.violations", report.Violations),
	)
	lg.Info("Audit complete",
		zap.Int("orders", len(report.Findings)),
		zap.Int("violations", report.Violations),
		zap.Int("cancelled", report.Cancelled),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

type customerResult struct {
	findings []Finding
	skip     SkipReason
}

func (a *Auditor) auditCustomer(ctx context.Context, lg *zap.Logger, customerID string) (customerResult, error) {
	ctx, span := a.tracer.Start(ctx, "Auditor.auditCustomer",
		trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer span.End()

	lg = lg.With(zap.String("customer_id", customerID))

	orders, err := a.orders.GetOrdersByCustomerID(ctx, customerID)
	switch {
	case errors.Is(err, order.ErrInvalidOrder):
		lg.Warn("Skipping customer", zap.Error(err))
		a.metrics.recordSkipped(ctx, SkipInvalidID)
		return customerResult{skip: SkipInvalidID}, nil
	case errors.Is(err, order.ErrOrderNotFound):
		lg.Info("Customer has no orders")
		a.metrics.recordSkipped(ctx, SkipNoOrders)
		return customerResult{skip: SkipNoOrders}, nil
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return customerResult{}, err
	}

	c, err := a.customers.FindByID(ctx, customerID)
	if errors.Is(err, order.ErrCustomerNotFound) {
		lg.Warn("Orders reference an unknown customer", zap.Int("orders", len(orders)))
		a.metrics.recordSkipped(ctx, SkipUnknownCustomer)
		return customerResult{skip: SkipUnknownCustomer}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return customerResult{}, errors.Wrap(err, "find customer")
	}

	findings := make([]Finding, 0, len(orders))
	for _, o := range orders {
		findings = append(findings, a.auditOrder(ctx, lg, o, *c))
	}
	span.SetAttributes(attribute.Int("audit.orders", len(findings)))
	return customerResult{findings: findings}, nil
}

func (a *Auditor) auditOrder(ctx context.Context, lg *zap.Logger, o *order.Order, c order.Customer) Finding {
	f := Finding{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status(),
		Total:      o.Total(),
	}
	defer func() { a.metrics.recordAudited(ctx, f) }()

	if f.Status == order.StatusCancelled {
		lg.Debug("Order cancelled",
			zap.String("order_id", o.ID),
			zap.String("reason", o.CancellationReason()),
		)
		return f
	}

	if err := a.evaluator.ValidateOrder(o, c); err != nil {
		var violation *order.ComplianceViolationError
		if errors.As(err, &violation) {
			v := violation.Violation
			f.Violation = &v
		}
		lg.Warn("Order violates compliance rules",
			zap.String("order_id", o.ID),
			zap.Stringer("total", f.Total),
			zap.Error(err),
		)
		return f
	}

	q := a.policy.Quote(f.Total, c.Premium, a.festival)
	f.Quote = &q
	lg.Debug("Order priced",
		zap.String("order_id", o.ID),
		zap.Int("discount_percent", q.DiscountPercent),
		zap.Stringer("gst", q.GST),
		zap.Stringer("total", q.Total),
	)
	return f
}
