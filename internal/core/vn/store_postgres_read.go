// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vnshelf/internal/platform/apperr"
	"github.com/taibuivan/vnshelf/internal/platform/database/schema"
	"github.com/taibuivan/vnshelf/internal/platform/dberr"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = apperr.NotFound("Visual novel")

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed catalog reader.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// selectColumns is the column list shared by every read, in [scanTargets] order.
var selectColumns = strings.Join(schema.VisualNovel.Columns(), ", ")

/*
List returns a filtered, paginated slice of visual novels and the total count.

Description: Uses COUNT(*) OVER() to return the total alongside the page,
and JSONB containment (served by the GIN index on tags) for the tag filter.
*/
func (repository *postgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*VisualNovel, int, error) {
	table := schema.VisualNovel

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`, selectColumns, table.Table))

	// Title search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (%s ILIKE $%d OR %s ILIKE $%d)", table.Title, argID, table.AltTitle, argID))
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		argID++
	}

	// Tag containment
	if filter.Tag != "" {
		containment, err := json.Marshal([]map[string]string{{"name": filter.Tag}})
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: encode tag filter: %w", err)
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND %s @> $%d::jsonb", table.Tags, argID))
		args = append(args, string(containment))
		argID++
	}

	sort := table.VoteCount
	switch filter.Sort {
	case SortRating:
		sort = table.Rating
	case SortReleased:
		sort = table.Released
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC NULLS LAST, %s ASC", sort, table.ID))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_visual_novels")
	}
	defer rows.Close()

	novels := make([]*VisualNovel, 0)
	total := 0

	for rows.Next() {
		novel := &VisualNovel{}
		if err := rows.Scan(append(scanTargets(novel), &total)...); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_visual_novel")
		}
		novels = append(novels, novel)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_visual_novels")
	}

	return novels, total, nil
}

// GetByID returns one row or [ErrNotFound].
func (repository *postgresRepository) GetByID(context context.Context, id string) (*VisualNovel, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.VisualNovel.Table, schema.VisualNovel.ID)

	novel := &VisualNovel{}
	err := repository.pool.QueryRow(context, query, id).Scan(scanTargets(novel)...)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_visual_novel")
	}

	return novel, nil
}

// scanTargets lists destinations in [schema.CatalogVisualNovelTable.Columns] order.
func scanTargets(novel *VisualNovel) []any {
	return []any{
		&novel.ID, &novel.Title, &novel.AltTitle, &novel.Released, &novel.ReleasedRaw, &novel.Description,
		&novel.ImageURL, &novel.ImageSexual, &novel.ImageViolence,
		&novel.Rating, &novel.VoteCount,
		&novel.Tags, &novel.Developers, &novel.Screenshots,
		&novel.UpdatedAt,
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
