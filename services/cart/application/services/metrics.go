package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	opCreate         = "create"
	opAddItem        = "add_item"
	opUpdateQuantity = "update_quantity"
	opRemoveItem     = "remove_item"
	opClear          = "clear"
	opDelete         = "delete"
)

type cartMetrics struct {
	mutations metric.Int64Counter
	lockWaits metric.Float64Histogram
}

func newCartMetrics() *cartMetrics {
	meter := otel.Meter("github.com/ghuser/mall/services/cart")

	mutations, err := meter.Int64Counter("cart.mutations",
		metric.WithDescription("Cart write operations by operation and outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	lockWaits, err := meter.Float64Histogram("cart.lock.wait",
		metric.WithDescription("Time spent acquiring the per-cart lock"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &cartMetrics{mutations: mutations, lockWaits: lockWaits}
}

func (m *cartMetrics) record(ctx context.Context, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func (m *cartMetrics) lockWait(ctx context.Context, d time.Duration, acquired bool) {
	m.lockWaits.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("acquired", acquired)))
}
