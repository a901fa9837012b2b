// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vnshelf/internal/api"
	"github.com/taibuivan/vnshelf/internal/core/vn"
	"github.com/taibuivan/vnshelf/internal/platform/config"
)

type stubRepository struct{}

func (stubRepository) List(context.Context, vn.Filter, int, int) ([]*vn.VisualNovel, int, error) {
	return []*vn.VisualNovel{{ID: "v11", Title: "Katawa Shoujo"}}, 1, nil
}

func (stubRepository) GetByID(_ context.Context, id string) (*vn.VisualNovel, error) {
	if id == "v11" {
		return &vn.VisualNovel{ID: "v11", Title: "Katawa Shoujo"}, nil
	}
	return nil, vn.ErrNotFound
}

func newTestServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(deps, logger)

	cfg := &config.Config{ServerPort: "0", Environment: "production", AllowedOriginSuffix: "vnshelf.app"}
	server := api.NewServer(ctx, cfg, logger, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Metrics:     promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		VisualNovel: vn.NewHandler(vn.NewService(stubRepository{}, logger)),
	})
	return server.Handler()
}

func get(handler http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestServer_Routes(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	tests := []struct {
		target string
		status int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/visual-novels", http.StatusOK},
		{"/api/v1/visual-novels/v11", http.StatusOK},
		{"/api/v1/visual-novels/v404", http.StatusNotFound},
		{"/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			recorder := get(handler, tt.target, nil)
			assert.Equal(t, tt.status, recorder.Code)
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
		})
	}
}

/*
TestServer_Readiness reports 503 with per-dependency results when a check fails.
*/
func TestServer_Readiness(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("redis down") },
	})

	recorder := get(handler, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var body struct {
		Data struct {
			Status string `json:"status"`
			Checks []struct {
				Name string `json:"name"`
				OK   bool   `json:"ok"`
			} `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	assert.Equal(t, "degraded", body.Data.Status)
	require.Len(t, body.Data.Checks, 2)
	assert.True(t, body.Data.Checks[0].OK)
	assert.False(t, body.Data.Checks[1].OK)
}

func TestServer_CORS(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	allowed := get(handler, "/health", map[string]string{"Origin": "https://www.vnshelf.app"})
	assert.Equal(t, "https://www.vnshelf.app", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := get(handler, "/health", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}
