// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/vnshelf/internal/platform/ctxutil"
)

// BackfillResult reports what a backfill touched.
type BackfillResult struct {
	// Scanned is the number of rows with a non-empty tag blob.
	Scanned int `json:"scanned"`
	// Updated is the number of rows written back.
	Updated int `json:"updated"`
}

/*
BackfillTagTranslations adds display names to tag entries written before
translations existed.

Description: Reads every row with a non-empty tag blob inside one
transaction, fills [Tag.DisplayName] only where it is nil, and rewrites a
row only when at least one entry changed. Existing display names are never
overwritten, so a second run performs no writes.

An entry stored with "name_ja": null decodes like one without the key and is
filled too. The rewritten entry carries a display name, so the next run
leaves it alone.

Errors:
  - Any read or write failure rolls the transaction back and is returned.
*/
func BackfillTagTranslations(context context.Context, store Store, translations *TagTranslations) (*BackfillResult, error) {
	logger := ctxutil.GetLogger(context)

	unit, err := store.Begin(context)
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(context) }()

	novels, err := unit.TaggedNovels(context)
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{Scanned: len(novels)}

	for _, novel := range novels {
		if !fillDisplayNames(novel.Tags, translations) {
			continue
		}

		if err := unit.ReplaceTags(context, novel.ID, novel.Tags); err != nil {
			return nil, fmt.Errorf("vn: backfill %s: %w", novel.ID, err)
		}
		result.Updated++

		logger.Debug("tags_backfilled", slog.String("id", novel.ID))
	}

	if err := unit.Commit(context); err != nil {
		return nil, err
	}

	logger.Info("backfill_committed",
		slog.Int("scanned", result.Scanned),
		slog.Int("updated", result.Updated),
	)

	return result, nil
}

// fillDisplayNames sets missing display names in place and reports whether
// any entry changed.
func fillDisplayNames(tags []Tag, translations *TagTranslations) bool {
	changed := false
	for i := range tags {
		if tags[i].DisplayName != nil {
			continue
		}
		display := translations.DisplayName(tags[i].Name)
		tags[i].DisplayName = &display
		changed = true
	}
	return changed
}
