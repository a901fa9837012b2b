// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest runs one VNDB to catalog ingestion.

Core Responsibility:

  - Normalizer: Maps source records to catalog rows (localized title, tag display names).
  - Runner: Sequences connect, ensure schema, fetch, normalize, write and commit.
  - Metrics: Run outcome counters pushed to a Pushgateway.

A run writes every record inside one transaction. Any failure rolls the whole
batch back; nothing is retried.
*/
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/vnshelf/internal/core/vn"
	"github.com/taibuivan/vnshelf/internal/platform/ctxutil"
	"github.com/taibuivan/vnshelf/internal/vndb"
	"github.com/taibuivan/vnshelf/pkg/uuidv7"
)

// # Run State

// State is a step of the run lifecycle:
// Idle → Connected → SchemaEnsured → Fetching → Writing → Committed | RolledBack → Closed.
type State string

const (
	StateIdle          State = "idle"
	StateConnected     State = "connected"
	StateSchemaEnsured State = "schema_ensured"
	StateFetching      State = "fetching"
	StateWriting       State = "writing"
	StateCommitted     State = "committed"
	StateRolledBack    State = "rolled_back"
	StateClosed        State = "closed"
)

func (state State) metricLabel() string {
	switch state {
	case StateCommitted, StateRolledBack:
		return string(state)
	default:
		return "failed"
	}
}

// Summary reports one run.
type Summary struct {
	RunID string `json:"run_id"`
	// Fetched is the number of records returned by the source.
	Fetched int `json:"fetched"`
	// Written is the number of committed records. It is zero unless the
	// transaction committed.
	Written int `json:"written"`
	Pages   int `json:"pages"`
	// Truncated reports that the page ceiling stopped the fetch while the
	// source still had data. It is a warning, not a failure.
	Truncated bool `json:"truncated"`
	// State is the outcome: Committed, RolledBack, or Idle when no
	// connection was made.
	State State `json:"state"`
	// States is every state entered, in order.
	States   []State       `json:"states"`
	Duration time.Duration `json:"duration"`
}

func (summary *Summary) enter(state State) {
	summary.States = append(summary.States, state)
	if state != StateClosed {
		summary.State = state
	}
}

// # Runner

// Connector opens the catalog store for one run.
type Connector func(context context.Context) (vn.Store, error)

// Runner executes ingestion runs. It holds no per-run state and may be
// reused.
type Runner struct {
	connect    Connector
	fetcher    vndb.PageFetcher
	normalizer *Normalizer
	query      vndb.Query
	ceiling    int
	metrics    *Metrics
	logger     *slog.Logger
}

// NewRunner wires a runner. ceiling is the maximum number of pages fetched.
func NewRunner(connect Connector, fetcher vndb.PageFetcher, normalizer *Normalizer, query vndb.Query, ceiling int, logger *slog.Logger) *Runner {
	return &Runner{
		connect:    connect,
		fetcher:    fetcher,
		normalizer: normalizer,
		query:      query,
		ceiling:    ceiling,
		logger:     logger,
	}
}

// WithMetrics records every run outcome on metrics.
func (runner *Runner) WithMetrics(metrics *Metrics) *Runner {
	runner.metrics = metrics
	return runner
}

/*
Run performs one ingestion.

Description: Connects, ensures the schema, fetches every page up to the
ceiling, then upserts each normalized record in source order inside one
transaction and commits. The store is closed on every path.

Returns:
  - *Summary: Always non-nil. On failure it reports the state reached.
  - error: The first failure. Later records are not attempted.
*/
func (runner *Runner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{RunID: uuidv7.New()}
	summary.enter(StateIdle)

	logger := runner.logger.With(slog.String("run_id", summary.RunID))
	ctx = ctxutil.WithRunID(ctxutil.WithLogger(ctx, logger), summary.RunID)

	logger.Info("ingest_started",
		slog.String("sort", runner.query.Sort),
		slog.Int("page_size", runner.query.Results),
		slog.Int("page_ceiling", runner.ceiling),
	)

	err := runner.run(ctx, summary)
	summary.Duration = time.Since(started)
	runner.metrics.Observe(summary)

	if err != nil {
		logger.Error("ingest_failed",
			slog.String("state", string(summary.State)),
			slog.Any("error", err),
		)
		return summary, err
	}

	logger.Info("ingest_finished",
		slog.Int("fetched", summary.Fetched),
		slog.Int("written", summary.Written),
		slog.Int("pages", summary.Pages),
		slog.Bool("truncated", summary.Truncated),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (runner *Runner) run(ctx context.Context, summary *Summary) (err error) {
	logger := ctxutil.GetLogger(ctx)

	store, err := runner.connect(ctx)
	if err != nil {
		return fmt.Errorf("ingest: connect: %w", err)
	}
	summary.enter(StateConnected)

	defer func() {
		if err != nil {
			summary.enter(StateRolledBack)
		}
		store.Close()
		summary.enter(StateClosed)
	}()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ingest: ensure schema: %w", err)
	}
	summary.enter(StateSchemaEnsured)

	summary.enter(StateFetching)
	result, err := vndb.FetchAll(ctx, runner.fetcher, runner.query, runner.ceiling)
	if err != nil {
		return fmt.Errorf("ingest: fetch: %w", err)
	}

	summary.Fetched = len(result.Records)
	summary.Pages = result.Pages
	summary.Truncated = result.Truncated

	if result.Truncated {
		logger.Warn("ingest_truncated",
			slog.Int("pages", result.Pages),
			slog.Int("records", len(result.Records)),
			slog.Int("page_ceiling", runner.ceiling),
		)
	}

	summary.enter(StateWriting)
	written, err := runner.write(ctx, store, result.Records)
	if err != nil {
		return err
	}

	summary.Written = written
	summary.enter(StateCommitted)
	logger.Info("ingest_committed", slog.Int("written", written))

	return nil
}

// write upserts records in order inside one transaction and commits.
// The first failure rolls everything back.
func (runner *Runner) write(ctx context.Context, store vn.Store, records []vndb.RawRecord) (int, error) {
	logger := ctxutil.GetLogger(ctx)

	unit, err := store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingest: begin: %w", err)
	}
	defer func() {
		if rollbackErr := unit.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			logger.Error("ingest_rollback_failed", slog.Any("error", rollbackErr))
		}
	}()

	total := len(records)
	for index, record := range records {
		novel := runner.normalizer.Normalize(record)

		if err := unit.Upsert(ctx, novel); err != nil {
			return 0, fmt.Errorf("ingest: write %s (%d/%d): %w", novel.ID, index+1, total, err)
		}

		logger.Debug("record_written",
			slog.Int("index", index+1),
			slog.Int("total", total),
			slog.String("id", novel.ID),
			slog.String("title", novel.Title),
		)
	}

	if err := unit.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ingest: commit: %w", err)
	}

	return total, nil
}
