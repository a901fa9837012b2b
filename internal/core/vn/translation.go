// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tag_translations_ja.yaml
var defaultTagTranslations []byte

// TagTranslations maps a source tag name to its display name.
//
// The zero value is an empty table; every lookup falls back to the name.
type TagTranslations struct {
	names map[string]string
}

// NewTagTranslations copies names into a new table.
func NewTagTranslations(names map[string]string) *TagTranslations {
	copied := make(map[string]string, len(names))
	for name, display := range names {
		copied[name] = display
	}
	return &TagTranslations{names: copied}
}

// DefaultTagTranslations returns the embedded Japanese table.
func DefaultTagTranslations() (*TagTranslations, error) {
	return parseTagTranslations(defaultTagTranslations)
}

/*
LoadTagTranslations reads a YAML mapping of tag name to display name.

An empty path returns the embedded default table.
*/
func LoadTagTranslations(path string) (*TagTranslations, error) {
	if path == "" {
		return DefaultTagTranslations()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vn: read tag translations %q: %w", path, err)
	}

	return parseTagTranslations(data)
}

func parseTagTranslations(data []byte) (*TagTranslations, error) {
	var names map[string]string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("vn: parse tag translations: %w", err)
	}
	return &TagTranslations{names: names}, nil
}

// DisplayName returns the translation for name, or name itself when the
// table has no exact, case-sensitive match.
func (translations *TagTranslations) DisplayName(name string) string {
	if translations == nil {
		return name
	}
	if display, ok := translations.names[name]; ok {
		return display
	}
	return name
}

// Len reports the number of entries.
func (translations *TagTranslations) Len() int {
	if translations == nil {
		return 0
	}
	return len(translations.names)
}
