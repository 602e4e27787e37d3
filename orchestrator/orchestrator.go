// Package orchestrator dispatches every enabled checker concurrently
// (bounded only when WithParallelism is set), each under its own
// wall-clock deadline, and folds their results into one report.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/aggregator"
	"github.com/sqlguard/sqlguard/checker"
	"github.com/sqlguard/sqlguard/config"
)

// DefaultCheckerDeadline is the per-checker wall-clock budget applied
// when the config snapshot does not override it.
const DefaultCheckerDeadline = 200 * time.Millisecond

// Orchestrator holds no mutable state between invocations: every field
// set at construction is read-only thereafter, so a single instance is
// safe to invoke from many goroutines simultaneously.
type Orchestrator struct {
	registry    *checker.Registry
	parallelism int
	deadline    time.Duration
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithParallelism bounds the number of checkers dispatched concurrently
// per event. Default is unbounded (one goroutine per enabled checker).
func WithParallelism(n int) Option {
	return func(o *Orchestrator) { o.parallelism = n }
}

// WithCheckerDeadline overrides the per-checker wall-clock budget.
func WithCheckerDeadline(d time.Duration) Option {
	return func(o *Orchestrator) { o.deadline = d }
}

// New builds an Orchestrator around a checker registry.
func New(registry *checker.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{registry: registry, deadline: DefaultCheckerDeadline}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run builds the checker set enabled under rc, dispatches each on its own
// goroutine bounded by the per-checker deadline, and aggregates the
// results into one AuditReport. Ordering of checker execution is not
// preserved; aggregation does not depend on it. sqlID
// identifies the statement/mapper this context was built from, for the
// report's (sqlId, timestamp) idempotency key.
func (o *Orchestrator) Run(ctx context.Context, sqlID string, sqlCtx sqlguard.SqlContext, rc *config.RuntimeConfig) sqlguard.AuditReport {
	start := time.Now()
	checkers := o.registry.Enabled(rc)

	results := make([]sqlguard.CheckerResult, len(checkers))
	g, gCtx := errgroup.WithContext(ctx)
	if o.parallelism > 0 {
		g.SetLimit(o.parallelism)
	}

	for i, c := range checkers {
		i, c := i, c
		g.Go(func() error {
			results[i] = o.runOne(gCtx, c, sqlCtx, rc.ForChecker(c.CheckerID()))
			return nil
		})
	}
	_ = g.Wait() // runOne never returns an error; every checker result is captured in place

	score, sorted := aggregator.Aggregate(results)

	var rowsAffected int64
	if sqlCtx.HasExecMetadata() {
		rowsAffected = sqlCtx.Exec.RowsAffected
	}

	return sqlguard.AuditReport{
		ReportID:          uuid.NewString(),
		SqlID:             sqlID,
		Sql:               sqlCtx.RawSQL,
		AggregatedScore:   score,
		PerCheckerResults: sorted,
		CreatedAt:         start,
		ExecutionTimeMs:   time.Since(start).Milliseconds(),
		RowsAffected:      rowsAffected,
	}
}

// runOne executes one checker under its deadline. A checker that exceeds
// the deadline yields a failed CheckerResult without cancelling the
// orchestrator run for the other checkers.
func (o *Orchestrator) runOne(ctx context.Context, c checker.Checker, sqlCtx sqlguard.SqlContext, cfg config.CheckerConfig) sqlguard.CheckerResult {
	deadline := o.deadline
	if d := cfg.ThresholdInt("deadlineMs", 0); d > 0 {
		deadline = time.Duration(d) * time.Millisecond
	}

	checkCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type outcome struct {
		score    sqlguard.RiskScore
		panicked bool
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicked: true}
			}
		}()
		done <- outcome{score: c.Check(sqlCtx, cfg)}
	}()

	select {
	case out := <-done:
		if out.panicked {
			return sqlguard.CheckerResult{
				CheckerID:    c.CheckerID(),
				Success:      false,
				ErrorMessage: sqlguard.ErrCheckerPanicked.Error(),
				ElapsedMs:    time.Since(start).Milliseconds(),
			}
		}
		return sqlguard.CheckerResult{
			CheckerID: c.CheckerID(),
			Success:   true,
			Score:     out.score,
			ElapsedMs: time.Since(start).Milliseconds(),
		}
	case <-checkCtx.Done():
		return sqlguard.CheckerResult{
			CheckerID:    c.CheckerID(),
			Success:      false,
			ErrorMessage: sqlguard.ErrCheckerTimeout.Error(),
			ElapsedMs:    time.Since(start).Milliseconds(),
		}
	}
}
