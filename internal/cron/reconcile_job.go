package cron

import (
	"context"
	"fmt"

	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

// CounterReconcileJobParams configures the counter reconciliation job.
type CounterReconcileJobParams struct {
	Logger     *logger.Logger
	Aggregator aggregator.Service
}

// NewCounterReconcileJob builds the job that rewrites denormalized
// counters from their durable sources each cycle.
func NewCounterReconcileJob(params CounterReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Aggregator == nil {
		return nil, fmt.Errorf("aggregator required")
	}
	return &counterReconcileJob{
		logg: params.Logger,
		agg:  params.Aggregator,
	}, nil
}

type counterReconcileJob struct {
	logg *logger.Logger
	agg  aggregator.Service
}

func (j *counterReconcileJob) Name() string { return "counter-reconcile" }

func (j *counterReconcileJob) Run(ctx context.Context) error {
	if err := j.agg.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile counters: %w", err)
	}
	j.logg.Info(ctx, "counter reconcile complete")
	return nil
}
