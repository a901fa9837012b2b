// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vnshelf/internal/platform/apperr"
	"github.com/taibuivan/vnshelf/internal/platform/respond"
	"github.com/taibuivan/vnshelf/pkg/pagination"
)

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error", apperr.NotFound("Visual novel"), http.StatusNotFound, apperr.CodeNotFound},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperr.StoreConnection(errors.New("refused"))), http.StatusServiceUnavailable, apperr.CodeStoreConnection},
		{"plain error hidden", errors.New("SELECT secret FROM t"), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, recorder.Code)

			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Error, "secret")
		})
	}
}

func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"v11"}, pagination.NewMeta(1, 20, 1))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":["v11"],"meta":{"page":1,"limit":20,"total":1,"total_pages":1}}`, recorder.Body.String())
}
