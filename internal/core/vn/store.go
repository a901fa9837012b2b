// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import "context"

// # Write Side

// Store is the catalog database as seen by a batch job.
type Store interface {
	// EnsureSchema creates the catalog table if needed. Repeated calls are no-ops.
	EnsureSchema(context context.Context) error

	// Begin opens a transaction. The caller must end it with Commit or Rollback.
	Begin(context context.Context) (UnitOfWork, error)

	// Close releases the underlying connections.
	Close()
}

// UnitOfWork is one open transaction against the catalog table.
type UnitOfWork interface {
	// Upsert creates or fully replaces the row keyed by novel.ID.
	Upsert(context context.Context, novel *VisualNovel) error

	// TaggedNovels returns the id and tags of every row with a non-empty
	// tag blob, locked for update.
	TaggedNovels(context context.Context) ([]TaggedNovel, error)

	// ReplaceTags overwrites the tag blob of one row.
	ReplaceTags(context context.Context, id string, tags []Tag) error

	Commit(context context.Context) error

	// Rollback aborts the transaction. It is a no-op after Commit.
	Rollback(context context.Context) error
}

// TaggedNovel is the projection read by the tag backfill.
type TaggedNovel struct {
	ID   string
	Tags []Tag
}

// # Read Side

// Filter narrows a catalog listing.
type Filter struct {
	// Query matches title or alttitle, case-insensitively.
	Query string
	// Tag keeps rows carrying a tag with this exact name.
	Tag string
	// Sort is one of SortVoteCount, SortRating, SortReleased.
	Sort string
}

// Supported sort keys.
const (
	SortVoteCount = "votecount"
	SortRating    = "rating"
	SortReleased  = "released"
)

// Repository is the read contract used by the HTTP API.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*VisualNovel, int, error)
	GetByID(context context.Context, id string) (*VisualNovel, error)
}
