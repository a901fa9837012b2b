// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vnshelf/internal/core/vn"
)

/*
TestDefaultTagTranslations checks the embedded table parses and covers the
common genre tags.
*/
func TestDefaultTagTranslations(t *testing.T) {
	translations, err := vn.DefaultTagTranslations()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, translations.Len(), 50)

	tests := []struct {
		name string
		want string
	}{
		{"Horror", "ホラー"},
		{"Romance", "ロマンス"},
		{"Sci-fi", "SF"},
		{"Point and Click", "ポイント&クリック"},
		{"No Sexual Content", "性的コンテンツなし"},
		{"Unknown123", "Unknown123"},
		{"horror", "horror"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translations.DisplayName(tt.name))
		})
	}
}

/*
TestLoadTagTranslations_File reads an override table from disk.
*/
func TestLoadTagTranslations_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Horror: 恐怖\nMaid: メイドさん\n"), 0o600))

	translations, err := vn.LoadTagTranslations(path)
	require.NoError(t, err)

	assert.Equal(t, 2, translations.Len())
	assert.Equal(t, "恐怖", translations.DisplayName("Horror"))
	assert.Equal(t, "Romance", translations.DisplayName("Romance"))
}

func TestLoadTagTranslations_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := vn.LoadTagTranslations(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("not a mapping", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tags.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- Horror\n- Romance\n"), 0o600))

		_, err := vn.LoadTagTranslations(path)
		assert.Error(t, err)
	})

	t.Run("empty path uses embedded table", func(t *testing.T) {
		translations, err := vn.LoadTagTranslations("")
		require.NoError(t, err)
		assert.Equal(t, "ホラー", translations.DisplayName("Horror"))
	})
}

func TestTagTranslations_NilAndCopy(t *testing.T) {
	var empty *vn.TagTranslations
	assert.Equal(t, "Horror", empty.DisplayName("Horror"))
	assert.Zero(t, empty.Len())

	source := map[string]string{"Horror": "ホラー"}
	translations := vn.NewTagTranslations(source)
	source["Horror"] = "changed"

	assert.Equal(t, "ホラー", translations.DisplayName("Horror"))
}
