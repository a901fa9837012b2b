// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vndb_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vnshelf/internal/platform/apperr"
	"github.com/taibuivan/vnshelf/internal/vndb"
)

const samplePage = `{
  "results": [
    {
      "id": "v11",
      "title": "Katawa Shoujo",
      "alttitle": null,
      "titles": [{"lang": "en", "title": "Katawa Shoujo"}, {"lang": "ja", "title": "かたわ少女"}],
      "released": "2012-01-04",
      "description": "A visual novel.",
      "image": {"url": "https://t.vndb.org/cv/1.jpg", "sexual": 0.4, "violence": 0},
      "rating": 78.5,
      "votecount": 12000,
      "tags": [{"name": "Romance", "rating": 2.8}],
      "developers": [{"name": "Four Leaf Studios"}],
      "screenshots": [{"url": "https://t.vndb.org/sf/1.jpg"}]
    },
    {"id": "v12", "title": "Minimal"}
  ],
  "more": true
}`

func baseQuery() vndb.Query {
	return vndb.Query{
		Fields:  []string{"id", "title", "tags.name"},
		Sort:    "votecount",
		Reverse: true,
		Results: 2,
		Page:    1,
	}
}

/*
TestFetchPage_Success decodes a page and forwards the request body verbatim.
*/
func TestFetchPage_Success(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/vn", request.URL.Path)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

		body, _ := io.ReadAll(request.Body)
		assert.NoError(t, json.Unmarshal(body, &received))

		_, _ = io.WriteString(writer, samplePage)
	}))
	defer server.Close()

	client := vndb.NewClient(server.URL)
	page, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)

	// Request shape
	assert.Equal(t, []any{}, received["filters"])
	assert.Equal(t, "id,title,tags.name", received["fields"])
	assert.Equal(t, "votecount", received["sort"])
	assert.Equal(t, true, received["reverse"])
	assert.Equal(t, float64(2), received["results"])
	assert.Equal(t, float64(1), received["page"])

	// Decoded page
	assert.True(t, page.More)
	require.Len(t, page.Records, 2)

	full := page.Records[0]
	assert.Equal(t, "v11", full.ID)
	assert.Nil(t, full.AltTitle)
	require.Len(t, full.Titles, 2)
	assert.Equal(t, "ja", full.Titles[1].Lang)
	require.NotNil(t, full.Image)
	assert.Equal(t, 0.4, *full.Image.Sexual)
	assert.Equal(t, 12000, *full.VoteCount)
	assert.Equal(t, "Four Leaf Studios", full.Developers[0].Name)

	minimal := page.Records[1]
	assert.Nil(t, minimal.Image)
	assert.Nil(t, minimal.Rating)
	assert.Nil(t, minimal.Released)
	assert.Empty(t, minimal.Tags)
}

/*
TestFetchPage_MoreIsSourceSignal makes sure More is not derived from the page length.
*/
func TestFetchPage_MoreIsSourceSignal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = io.WriteString(writer, `{"results": [{"id": "v1", "title": "A"}, {"id": "v2", "title": "B"}], "more": false}`)
	}))
	defer server.Close()

	page, err := vndb.NewClient(server.URL).FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
	assert.False(t, page.More)
}

/*
TestFetchPage_NonSuccess surfaces the status and raw body as SOURCE_UNAVAILABLE.
*/
func TestFetchPage_NonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(writer, "Throttled")
	}))
	defer server.Close()

	page, err := vndb.NewClient(server.URL).FetchPage(context.Background(), baseQuery())
	require.Error(t, err)
	assert.Nil(t, page)
	assert.True(t, apperr.HasCode(err, apperr.CodeSourceUnavailable))

	var statusErr *vndb.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "Throttled", statusErr.Body)
}

/*
TestFetchPage_TransportFailure maps connection errors to SOURCE_UNAVAILABLE.
*/
func TestFetchPage_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := vndb.NewClient(url).FetchPage(context.Background(), baseQuery())
	assert.True(t, apperr.HasCode(err, apperr.CodeSourceUnavailable))
}

/*
TestFetchPage_DecodeErrors covers bodies that are not the expected document.
*/
func TestFetchPage_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not_json", `<html>maintenance</html>`},
		{"missing_more", `{"results": []}`},
		{"missing_results", `{"more": false}`},
		{"wrong_type", `{"results": {"id": "v1"}, "more": false}`},
		{"record_without_id", `{"results": [{"title": "No id"}], "more": false}`},
		{"record_without_title", `{"results": [{"id": "v1"}], "more": false}`},
		{"tag_without_name", `{"results": [{"id": "v1", "title": "A", "tags": [{"rating": 1}]}], "more": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				_, _ = io.WriteString(writer, tt.body)
			}))
			defer server.Close()

			page, err := vndb.NewClient(server.URL).FetchPage(context.Background(), baseQuery())
			assert.Nil(t, page)
			assert.True(t, apperr.HasCode(err, apperr.CodeDecode), "got %v", err)
		})
	}
}

/*
TestFetchPage_InvalidQuery rejects bad input before any request is sent.
*/
func TestFetchPage_InvalidQuery(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
	}))
	defer server.Close()

	tests := []struct {
		name   string
		mutate func(*vndb.Query)
	}{
		{"zero_page_size", func(q *vndb.Query) { q.Results = 0 }},
		{"page_size_above_limit", func(q *vndb.Query) { q.Results = vndb.MaxResults + 1 }},
		{"zero_page_index", func(q *vndb.Query) { q.Page = 0 }},
		{"no_fields", func(q *vndb.Query) { q.Fields = nil }},
		{"unknown_field", func(q *vndb.Query) { q.Fields = append(q.Fields, "staff.name") }},
	}

	client := vndb.NewClient(server.URL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := baseQuery()
			tt.mutate(&query)

			_, err := client.FetchPage(context.Background(), query)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}

	assert.Zero(t, calls)
}

// memoryCache is a PageCache kept in a map.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func (cache *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.getErr != nil {
		return nil, false, cache.getErr
	}
	body, ok := cache.entries[key]
	return body, ok, nil
}

func (cache *memoryCache) Set(_ context.Context, key string, body []byte, _ time.Duration) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[key] = body
	return nil
}

// expire drops every entry, as Redis does once the TTL elapses.
func (cache *memoryCache) expire() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	clear(cache.entries)
}

// changingSource serves one record whose rating is read on every request.
func changingSource(rating *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"results": []map[string]any{{"id": "v11", "title": "Katawa Shoujo", "rating": rating.Load()}},
			"more":    false,
		})
	}))
}

/*
TestFetchPage_Cache serves the second identical request from the cache.
*/
func TestFetchPage_Cache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		_, _ = io.WriteString(writer, samplePage)
	}))
	defer server.Close()

	cache := &memoryCache{entries: map[string][]byte{}}
	client := vndb.NewClient(server.URL, vndb.WithCache(cache, time.Minute))

	first, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)
	second, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Len(t, cache.entries, 1)

	// A different page is a different key.
	query := baseQuery()
	query.Page = 2
	_, err = client.FetchPage(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

/*
TestFetchPage_CacheFailureIgnored falls back to the network when the cache errors.
*/
func TestFetchPage_CacheFailureIgnored(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		_, _ = io.WriteString(writer, samplePage)
	}))
	defer server.Close()

	cache := &memoryCache{entries: map[string][]byte{}, getErr: errors.New("redis down")}
	client := vndb.NewClient(server.URL, vndb.WithCache(cache, time.Minute))

	_, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

/*
TestFetchPage_ErrorsAreNotCached keeps failed responses out of the cache.
*/
func TestFetchPage_ErrorsAreNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := &memoryCache{entries: map[string][]byte{}}
	client := vndb.NewClient(server.URL, vndb.WithCache(cache, time.Minute))

	_, err := client.FetchPage(context.Background(), baseQuery())
	require.Error(t, err)
	assert.Empty(t, cache.entries)
}

/*
TestFetchPage_CacheDisabled re-fetches every request when the TTL is zero, so
a later run sees upstream changes.
*/
func TestFetchPage_CacheDisabled(t *testing.T) {
	var rating atomic.Int64
	rating.Store(70)
	server := changingSource(&rating)
	defer server.Close()

	cache := &memoryCache{entries: map[string][]byte{}}
	client := vndb.NewClient(server.URL, vndb.WithCache(cache, 0))

	first, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.Equal(t, 70.0, *first.Records[0].Rating)

	rating.Store(95)
	second, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)

	assert.Equal(t, 95.0, *second.Records[0].Rating)
	assert.Empty(t, cache.entries)
}

/*
TestFetchPage_CacheExpired re-fetches once the cached page has expired.
*/
func TestFetchPage_CacheExpired(t *testing.T) {
	var rating atomic.Int64
	rating.Store(70)
	server := changingSource(&rating)
	defer server.Close()

	cache := &memoryCache{entries: map[string][]byte{}}
	client := vndb.NewClient(server.URL, vndb.WithCache(cache, time.Minute))

	_, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)

	rating.Store(95)
	cached, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.Equal(t, 70.0, *cached.Records[0].Rating, "served from cache within the TTL")

	cache.expire()
	fresh, err := client.FetchPage(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.Equal(t, 95.0, *fresh.Records[0].Rating)
}
