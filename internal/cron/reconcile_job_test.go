package cron

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
)

type fakeAggregator struct {
	reconciles int
	err        error
}

func (f *fakeAggregator) ApplyEvent(context.Context, aggregator.ApplyEventInput) error { return nil }

func (f *fakeAggregator) Reconcile(context.Context) error {
	f.reconciles++
	return f.err
}

func TestCounterReconcileJobRunsAggregator(t *testing.T) {
	agg := &fakeAggregator{}
	job, err := NewCounterReconcileJob(CounterReconcileJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Aggregator: agg,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "counter-reconcile" {
		t.Fatalf("unexpected name %s", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if agg.reconciles != 1 {
		t.Fatalf("reconcile ran %d times, want 1", agg.reconciles)
	}
}

func TestCounterReconcileJobWrapsFailure(t *testing.T) {
	agg := &fakeAggregator{err: errors.New("deadlock detected")}
	job, err := NewCounterReconcileJob(CounterReconcileJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Aggregator: agg,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	runErr := job.Run(context.Background())
	if runErr == nil || !strings.Contains(runErr.Error(), "reconcile counters") {
		t.Fatalf("expected wrapped error, got %v", runErr)
	}
}
