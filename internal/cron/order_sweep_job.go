package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/tuanphm/teehouse-backend/pkg/logger"
	"github.com/tuanphm/teehouse-backend/pkg/metrics"
)

const sweepBatchLimit = 100

// staleOrderExpirer is the slice of the order service the sweep uses.
type staleOrderExpirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// OrderSweepJobParams configure the awaiting-payment sweep.
type OrderSweepJobParams struct {
	Logger  *logger.Logger
	Orders  staleOrderExpirer
	Metrics *metrics.CronJobMetrics
	TTL     time.Duration
}

// NewOrderSweepJob builds the job that expires orders whose payment window
// lapsed. The per-order transaction work lives in the order service; the job
// only drives the loop and records the count.
func NewOrderSweepJob(params OrderSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("awaiting-payment ttl must be positive")
	}
	return &orderSweepJob{
		logg:    params.Logger,
		orders:  params.Orders,
		metrics: params.Metrics,
		ttl:     params.TTL,
	}, nil
}

type orderSweepJob struct {
	logg    *logger.Logger
	orders  staleOrderExpirer
	metrics *metrics.CronJobMetrics
	ttl     time.Duration
}

func (j *orderSweepJob) Name() string { return "order-sweep" }

func (j *orderSweepJob) Run(ctx context.Context) error {
	expired, err := j.orders.ExpireStale(ctx, j.ttl, sweepBatchLimit)
	if err != nil {
		return fmt.Errorf("expire stale orders: %w", err)
	}
	if j.metrics != nil && expired > 0 {
		j.metrics.AddExpiredOrders(expired)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": expired})
	j.logg.Info(logCtx, "awaiting-payment sweep complete")
	return nil
}
