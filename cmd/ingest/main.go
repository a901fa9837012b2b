// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command ingest performs one VNDB ingestion run and exits.
//
// # Sequence
//
//  1. Initialize structured logger and load configuration.
//  2. Build the VNDB client (rate limited; Redis cached when VNDB_CACHE_TTL > 0).
//  3. Load the tag translation table.
//  4. Run: connect, ensure schema, fetch, write, commit.
//  5. Push run metrics when PUSHGATEWAY_URL is set.
//
// The exit status is 0 when the batch committed (truncated or not) and 1 otherwise.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/vnshelf/internal/core/vn"
	"github.com/taibuivan/vnshelf/internal/ingest"
	"github.com/taibuivan/vnshelf/internal/platform/config"
	"github.com/taibuivan/vnshelf/internal/platform/constants"
	pgstore "github.com/taibuivan/vnshelf/internal/platform/postgres"
	redisstore "github.com/taibuivan/vnshelf/internal/platform/redis"
	"github.com/taibuivan/vnshelf/internal/vndb"
)

func main() {
	os.Exit(run())
}

// run wires and executes one ingestion run. Deferred cleanup runs before
// main exits with the returned status.
func run() int {
	log := newLogger(false)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	log = newLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Source ────────────────────────────────────────────────────────────
	options := []vndb.Option{
		vndb.WithHTTPClient(&http.Client{Timeout: cfg.Source.HTTPTimeout}),
		vndb.WithRateInterval(cfg.Source.RateInterval),
		vndb.WithLogger(log),
	}

	if cfg.RedisURL != "" && cfg.Source.CacheTTL > 0 {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() { _ = rdb.Close() }()

		options = append(options, vndb.WithCache(vndb.NewRedisPageCache(rdb), cfg.Source.CacheTTL))
		log.Info("vndb_cache_enabled", slog.Duration("ttl", cfg.Source.CacheTTL))
	}

	client := vndb.NewClient(cfg.Source.BaseURL, options...)

	fields := cfg.Source.Fields
	if len(fields) == 0 {
		fields = vndb.DefaultFields
	}

	query := vndb.Query{
		Filters: json.RawMessage(cfg.Source.Filters),
		Fields:  fields,
		Sort:    cfg.Source.Sort,
		Reverse: cfg.Source.Reverse,
		Results: cfg.Source.PageSize,
	}

	// ── Normalizer ────────────────────────────────────────────────────────
	translations, err := vn.LoadTagTranslations(cfg.TagTranslationsPath)
	if err != nil {
		log.Error("startup failure", slog.String("context", "load tag translations"), slog.Any("error", err))
		return 1
	}

	normalizer := ingest.NewNormalizer(translations, cfg.TitleLanguage)

	// ── Run ───────────────────────────────────────────────────────────────
	connect := func(context context.Context) (vn.Store, error) {
		pool, err := pgstore.NewPool(context, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return vn.NewPostgresStore(pool, cfg.DatabaseURL, log), nil
	}

	metrics := ingest.NewMetrics()
	runner := ingest.NewRunner(connect, client, normalizer, query, cfg.Source.PageCeiling, log).WithMetrics(metrics)

	summary, runErr := runner.Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL); err != nil {
			log.Warn("metrics_push_failed", slog.Any("error", err))
		}
	}

	if runErr != nil {
		return 1
	}

	if summary.Truncated {
		log.Warn("ingest_incomplete",
			slog.String("run_id", summary.RunID),
			slog.Int("page_ceiling", cfg.Source.PageCeiling),
		)
	}

	return 0
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName), slog.String("cmd", "ingest"))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
