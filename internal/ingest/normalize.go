// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"strings"
	"time"

	"github.com/taibuivan/vnshelf/internal/core/vn"
	"github.com/taibuivan/vnshelf/internal/vndb"
	"github.com/taibuivan/vnshelf/pkg/pointer"
	"github.com/taibuivan/vnshelf/pkg/slice"
)

// DefaultTitleLanguage is the language of the localized title.
const DefaultTitleLanguage = "ja"

// Normalizer turns source records into catalog rows. It is pure and safe
// for concurrent use.
type Normalizer struct {
	translations  *vn.TagTranslations
	titleLanguage string
}

// NewNormalizer builds a normalizer. An empty titleLanguage means
// [DefaultTitleLanguage].
func NewNormalizer(translations *vn.TagTranslations, titleLanguage string) *Normalizer {
	if titleLanguage == "" {
		titleLanguage = DefaultTitleLanguage
	}
	return &Normalizer{translations: translations, titleLanguage: titleLanguage}
}

/*
Normalize maps one record to a catalog row.

Description: The localized title is the record's alttitle when non-empty,
otherwise the first titles entry in the configured language, otherwise
absent. Every tag keeps its name and gains a display name (the translation,
or the name itself). Optional values stay absent; they are never defaulted.
*/
func (normalizer *Normalizer) Normalize(record vndb.RawRecord) *vn.VisualNovel {
	novel := &vn.VisualNovel{
		ID:          record.ID,
		Title:       record.Title,
		AltTitle:    normalizer.localizedTitle(record),
		Released:    releaseDate(record.Released),
		ReleasedRaw: rawReleaseDate(record.Released),
		Description: record.Description,
		Rating:      record.Rating,
		VoteCount:   record.VoteCount,
		Tags:        normalizer.tags(record.Tags),
		Developers:  developers(record.Developers),
		Screenshots: screenshots(record.Screenshots),
	}

	if record.Image != nil {
		novel.ImageURL = record.Image.URL
		novel.ImageSexual = record.Image.Sexual
		novel.ImageViolence = record.Image.Violence
	}

	return novel
}

func (normalizer *Normalizer) localizedTitle(record vndb.RawRecord) *string {
	if record.AltTitle != nil && *record.AltTitle != "" {
		return record.AltTitle
	}

	for _, entry := range record.Titles {
		if entry.Lang == normalizer.titleLanguage {
			title := entry.Title
			return &title
		}
	}

	return nil
}

func (normalizer *Normalizer) tags(refs []vndb.TagRef) []vn.Tag {
	return slice.Map(refs, func(ref vndb.TagRef) vn.Tag {
		return vn.Tag{
			ID:          ref.ID,
			Name:        ref.Name,
			Rating:      ref.Rating,
			DisplayName: pointer.To(normalizer.translations.DisplayName(ref.Name)),
		}
	})
}

// releaseDate keeps complete YYYY-MM-DD dates. Partial dates ("2007",
// "2007-04") and "tba" have no day to store and become nil.
func releaseDate(released *string) *time.Time {
	if released == nil {
		return nil
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(*released))
	if err != nil {
		return nil
	}
	return &date
}

// rawReleaseDate keeps the source value verbatim so partial dates survive.
func rawReleaseDate(released *string) *string {
	if released == nil {
		return nil
	}

	value := strings.TrimSpace(*released)
	if value == "" {
		return nil
	}
	return pointer.To(value)
}

func developers(refs []vndb.DeveloperRef) []vn.Developer {
	return slice.Map(refs, func(ref vndb.DeveloperRef) vn.Developer {
		return vn.Developer{ID: ref.ID, Name: ref.Name}
	})
}

func screenshots(refs []vndb.ScreenshotRef) []vn.Screenshot {
	return slice.Map(refs, func(ref vndb.ScreenshotRef) vn.Screenshot {
		return vn.Screenshot{URL: ref.URL}
	})
}
