// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vnshelf/internal/core/vn"
	"github.com/taibuivan/vnshelf/internal/platform/apperr"
	"github.com/taibuivan/vnshelf/pkg/pointer"
)

// fakeRepository records the last List call and serves fixed rows.
type fakeRepository struct {
	novels []*vn.VisualNovel

	filter vn.Filter
	limit  int
	offset int
}

func (repo *fakeRepository) List(_ context.Context, filter vn.Filter, limit, offset int) ([]*vn.VisualNovel, int, error) {
	repo.filter, repo.limit, repo.offset = filter, limit, offset
	return repo.novels, len(repo.novels), nil
}

func (repo *fakeRepository) GetByID(_ context.Context, id string) (*vn.VisualNovel, error) {
	for _, novel := range repo.novels {
		if novel.ID == id {
			return novel, nil
		}
	}
	return nil, vn.ErrNotFound
}

func newTestRouter(repo vn.Repository) http.Handler {
	router := chi.NewRouter()
	router.Route("/api/v1/visual-novels", vn.NewHandler(vn.NewService(repo, slog.Default())).RegisterRoutes)
	return router
}

func serve(t *testing.T, handler http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder, body
}

func TestHandler_List(t *testing.T) {
	repo := &fakeRepository{novels: []*vn.VisualNovel{
		{ID: "v11", Title: "Katawa Shoujo", AltTitle: pointer.To("かたわ少女"), VoteCount: pointer.To(5000)},
		{ID: "v17", Title: "Ever17"},
	}}

	recorder, body := serve(t, newTestRouter(repo), "/api/v1/visual-novels?page=2&limit=10&q=katawa&tag=Drama&sort=rating")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, vn.Filter{Query: "katawa", Tag: "Drama", Sort: vn.SortRating}, repo.filter)
	assert.Equal(t, 10, repo.limit)
	assert.Equal(t, 10, repo.offset)

	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "かたわ少女", data[0].(map[string]any)["alttitle"])

	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["page"])
	assert.EqualValues(t, 2, meta["total"])
}

func TestHandler_ListDefaultsSort(t *testing.T) {
	repo := &fakeRepository{}

	recorder, body := serve(t, newTestRouter(repo), "/api/v1/visual-novels")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, vn.SortVoteCount, repo.filter.Sort)
	assert.Equal(t, 0, repo.offset)
	assert.Empty(t, body["data"])
}

func TestHandler_ListRejectsUnknownSort(t *testing.T) {
	recorder, body := serve(t, newTestRouter(&fakeRepository{}), "/api/v1/visual-novels?sort=title")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, apperr.CodeValidation, body["code"])
	assert.NotEmpty(t, body["details"])
}

func TestHandler_Get(t *testing.T) {
	repo := &fakeRepository{novels: []*vn.VisualNovel{{ID: "v11", Title: "Katawa Shoujo"}}}
	router := newTestRouter(repo)

	t.Run("found", func(t *testing.T) {
		recorder, body := serve(t, router, "/api/v1/visual-novels/v11")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "Katawa Shoujo", body["data"].(map[string]any)["title"])
	})

	t.Run("missing", func(t *testing.T) {
		recorder, body := serve(t, router, "/api/v1/visual-novels/v999")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, apperr.CodeNotFound, body["code"])
	})
}
