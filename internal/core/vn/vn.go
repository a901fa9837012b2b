// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package vn defines the persisted visual novel catalog and its data access.

It owns the single table the ingestion pipeline writes to, and is the only
package with write access to it.

Core Responsibility:

  - Catalog: One row per VNDB id, holding the latest known values (no history).
  - Writes: Idempotent full-replace upsert inside a caller-owned transaction.
  - Maintenance: Retrofitting tag display names onto rows written earlier.
  - Reads: Filtered, paginated listing for the HTTP API.

Composite sub-structures (tags, developers, screenshots) are stored as JSONB
blobs on the row and are always replaced wholesale.
*/
package vn

import "time"

// # Domain Entities

// VisualNovel is one catalog row.
//
// Optional columns are pointers; nil is stored as NULL.
type VisualNovel struct {
	// ID is the VNDB identifier (e.g. "v11") and the persistence key.
	ID    string `json:"id"`
	Title string `json:"title"`
	// AltTitle is the resolved localized title.
	AltTitle *string    `json:"alttitle"`
	Released *time.Time `json:"released"`
	// ReleasedRaw is the release date as the source sent it, including
	// partial values ("2007", "2007-04", "tba") that Released cannot hold.
	ReleasedRaw   *string  `json:"released_raw"`
	Description   *string  `json:"description"`
	ImageURL      *string  `json:"image_url"`
	ImageSexual   *float64 `json:"image_sexual"`
	ImageViolence *float64 `json:"image_violence"`
	Rating        *float64 `json:"rating"`
	VoteCount     *int     `json:"votecount"`

	Tags        []Tag        `json:"tags"`
	Developers  []Developer  `json:"developers"`
	Screenshots []Screenshot `json:"screenshots"`

	// UpdatedAt is set by the database on every write.
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is an entry of the tags blob.
type Tag struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name"`
	Rating *float64 `json:"rating"`
	// DisplayName is the translated name. A nil value marks an entry
	// written before translations existed; see [BackfillTagTranslations].
	DisplayName *string `json:"name_ja,omitempty"`
}

// Developer is an entry of the developers blob.
type Developer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Screenshot is an entry of the screenshots blob.
type Screenshot struct {
	URL string `json:"url"`
}
