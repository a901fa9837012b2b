// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command backfill adds tag display names to catalog rows written before
// translations existed. It is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/vnshelf/internal/core/vn"
	"github.com/taibuivan/vnshelf/internal/platform/config"
	"github.com/taibuivan/vnshelf/internal/platform/constants"
	"github.com/taibuivan/vnshelf/internal/platform/ctxutil"
	pgstore "github.com/taibuivan/vnshelf/internal/platform/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := newLogger(false)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	log = newLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = ctxutil.WithLogger(ctx, log)

	translations, err := vn.LoadTagTranslations(cfg.TagTranslationsPath)
	if err != nil {
		log.Error("startup failure", slog.String("context", "load tag translations"), slog.Any("error", err))
		return 1
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("startup failure", slog.String("context", "connect to postgres"), slog.Any("error", err))
		return 1
	}

	store := vn.NewPostgresStore(pool, cfg.DatabaseURL, log)
	defer store.Close()

	log.Info("backfill_started", slog.Int("translations", translations.Len()))

	result, err := vn.BackfillTagTranslations(ctx, store, translations)
	if err != nil {
		log.Error("backfill_failed", slog.Any("error", err))
		return 1
	}

	log.Info("backfill_finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("updated", result.Updated),
	)
	return 0
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName), slog.String("cmd", "backfill"))
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
