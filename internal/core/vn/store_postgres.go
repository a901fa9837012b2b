// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vnshelf/internal/platform/database/schema"
	"github.com/taibuivan/vnshelf/internal/platform/dberr"
	"github.com/taibuivan/vnshelf/internal/platform/migration"
)

// # PostgreSQL Store

// PostgresStore implements [Store] on a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	dsn    string
	logger *slog.Logger
}

// NewPostgresStore takes ownership of pool; Close closes it.
// The dsn is used by EnsureSchema, which runs migrations on its own connection.
func NewPostgresStore(pool *pgxpool.Pool, dsn string, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, dsn: dsn, logger: logger}
}

// EnsureSchema applies the embedded migrations.
func (store *PostgresStore) EnsureSchema(context context.Context) error {
	return migration.RunUp(store.dsn, store.logger)
}

// Begin opens a read-committed transaction.
func (store *PostgresStore) Begin(context context.Context) (UnitOfWork, error) {
	transaction, err := store.pool.BeginTx(context, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, dberr.Wrap(err, "begin_transaction")
	}

	return &postgresUnit{transaction: transaction}, nil
}

// Close closes the pool.
func (store *PostgresStore) Close() {
	store.pool.Close()
}

// postgresUnit adapts a [pgx.Tx] to [UnitOfWork].
type postgresUnit struct {
	transaction pgx.Tx
}

func (unit *postgresUnit) Upsert(context context.Context, novel *VisualNovel) error {
	return Upsert(context, unit.transaction, novel)
}

func (unit *postgresUnit) TaggedNovels(context context.Context) ([]TaggedNovel, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE %s IS NOT NULL AND jsonb_array_length(%s) > 0
		ORDER BY %s
		FOR UPDATE
	`,
		schema.VisualNovel.ID, schema.VisualNovel.Tags, schema.VisualNovel.Table,
		schema.VisualNovel.Tags, schema.VisualNovel.Tags,
		schema.VisualNovel.ID,
	)

	rows, err := unit.transaction.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tagged_novels")
	}
	defer rows.Close()

	var novels []TaggedNovel
	for rows.Next() {
		var novel TaggedNovel
		if err := rows.Scan(&novel.ID, &novel.Tags); err != nil {
			return nil, dberr.Wrap(err, "scan_tagged_novel")
		}
		novels = append(novels, novel)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_tagged_novels")
	}

	return novels, nil
}

func (unit *postgresUnit) ReplaceTags(context context.Context, id string, tags []Tag) error {
	blob, err := jsonBlob(tags)
	if err != nil {
		return err
	}

	// updated_at is left alone: the backfill is not a new upstream write.
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		schema.VisualNovel.Table, schema.VisualNovel.Tags, schema.VisualNovel.ID)

	if _, err := unit.transaction.Exec(context, query, blob, id); err != nil {
		return dberr.Wrap(err, "replace_tags")
	}

	return nil
}

func (unit *postgresUnit) Commit(context context.Context) error {
	if err := unit.transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_transaction")
	}
	return nil
}

func (unit *postgresUnit) Rollback(context context.Context) error {
	err := unit.transaction.Rollback(context)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return dberr.Wrap(err, "rollback_transaction")
	}
	return nil
}

// # Upsert

// upsertQuery inserts every column and, on an existing id, overwrites every
// column from EXCLUDED. updated_at is always the time of the write.
var upsertQuery = buildUpsertQuery()

func buildUpsertQuery() string {
	table := schema.VisualNovel
	columns := table.Columns()
	dataColumns := columns[:len(columns)-1]

	placeholders := make([]string, len(dataColumns))
	assignments := make([]string, 0, len(columns)-1)
	for i, column := range dataColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if column != table.ID {
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
		}
	}
	assignments = append(assignments, fmt.Sprintf("%s = now()", table.UpdatedAt))

	return fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s, now())
		ON CONFLICT (%s) DO UPDATE SET
			%s
	`,
		table.Table, strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		table.ID,
		strings.Join(assignments, ",\n\t\t\t"),
	)
}

// Upsert creates or fully replaces the row for novel.ID inside transaction.
//
// Calling it twice with the same record leaves one identical row (apart
// from updated_at). It never retries; errors are classified by [dberr.Wrap].
func Upsert(context context.Context, transaction pgx.Tx, novel *VisualNovel) error {
	tags, err := jsonBlob(novel.Tags)
	if err != nil {
		return err
	}
	developers, err := jsonBlob(novel.Developers)
	if err != nil {
		return err
	}
	screenshots, err := jsonBlob(novel.Screenshots)
	if err != nil {
		return err
	}

	_, err = transaction.Exec(context, upsertQuery,
		novel.ID,
		novel.Title,
		novel.AltTitle,
		novel.Released,
		novel.ReleasedRaw,
		novel.Description,
		novel.ImageURL,
		novel.ImageSexual,
		novel.ImageViolence,
		novel.Rating,
		novel.VoteCount,
		tags,
		developers,
		screenshots,
	)
	if err != nil {
		return dberr.Wrap(err, "upsert_visual_novel "+novel.ID)
	}

	return nil
}

// jsonBlob encodes a sub-structure for a JSONB column. A nil slice is NULL;
// an empty slice is an empty array.
func jsonBlob[T any](items []T) ([]byte, error) {
	if items == nil {
		return nil, nil
	}

	blob, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("vn: encode json blob: %w", err)
	}

	return blob, nil
}
