// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package vndb is the remote source of the catalog: a client for the VNDB
"kana" API and the pagination driver built on top of it.

The client issues exactly one page request per call. It never retries and it
never paginates; [FetchAll] owns the page loop and its safety ceiling.

Error mapping:

  - Transport failure or non-2xx status: apperr SOURCE_UNAVAILABLE, with a
    [*StatusError] carrying the status and the verbatim body as cause.
  - Body that is not {"results": [...], "more": bool}, or a record failing
    structural validation: apperr DECODE_ERROR.
*/
package vndb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/taibuivan/vnshelf/internal/platform/apperr"
	"github.com/taibuivan/vnshelf/internal/platform/constants"
	"github.com/taibuivan/vnshelf/internal/platform/validate"
)

// MaxResults is the largest page size the source serves.
const MaxResults = 100

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 32 << 20

// DefaultFields is the field list requested when none is configured.
var DefaultFields = []string{
	"id", "title", "alttitle", "titles.lang", "titles.title", "released", "description",
	"image.url", "image.sexual", "image.violence",
	"rating", "votecount",
	"tags.name", "tags.rating",
	"developers.name",
	"screenshots.url",
}

// KnownFields is the set of field names the VNDB vn endpoint accepts and
// [RawRecord] can hold.
var KnownFields = map[string]struct{}{
	"id": {}, "title": {}, "alttitle": {}, "released": {}, "description": {},
	"titles.lang": {}, "titles.title": {},
	"image.url": {}, "image.sexual": {}, "image.violence": {},
	"rating": {}, "votecount": {},
	"tags.id": {}, "tags.name": {}, "tags.rating": {},
	"developers.id": {}, "developers.name": {},
	"screenshots.url": {},
}

// Query is one page request against the vn endpoint.
type Query struct {
	// Filters is a VNDB filter expression; nil means no filter.
	Filters json.RawMessage
	Fields  []string
	Sort    string
	Reverse bool
	// Results is the page size.
	Results int
	// Page is the 1-based page index.
	Page int
}

// Page is one decoded response.
type Page struct {
	Records []RawRecord
	// More is the source's own continuation signal.
	More bool
}

// StatusError is a non-success response from the source.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vndb: unexpected status %d: %s", e.StatusCode, e.Body)
}

// requestBody is the JSON document POSTed to the vn endpoint.
type requestBody struct {
	Filters json.RawMessage `json:"filters"`
	Fields  string          `json:"fields"`
	Sort    string          `json:"sort,omitempty"`
	Reverse bool            `json:"reverse"`
	Results int             `json:"results"`
	Page    int             `json:"page"`
}

// responseBody uses pointers so that missing keys are detected.
type responseBody struct {
	Results *[]RawRecord `json:"results"`
	More    *bool        `json:"more"`
}

// Validate checks the query against the source's input constraints.
func (q Query) Validate() error {
	v := &validate.Validator{}
	v.Range("results", q.Results, 1, MaxResults).
		Min("page", q.Page, 1).
		Custom("fields", len(q.Fields) == 0, "At least one field is required")

	for _, field := range q.Fields {
		if _, ok := KnownFields[field]; !ok {
			v.Custom("fields", true, fmt.Sprintf("Unknown field %q", field))
		}
	}

	return v.Err()
}

func (q Query) body() requestBody {
	filters := q.Filters
	if len(filters) == 0 {
		filters = json.RawMessage("[]")
	}

	return requestBody{
		Filters: filters,
		Fields:  strings.Join(q.Fields, ","),
		Sort:    q.Sort,
		Reverse: q.Reverse,
		Results: q.Results,
		Page:    q.Page,
	}
}

// # Client

// Client talks to the VNDB API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      PageCache
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRateInterval spaces outgoing requests by at least interval.
// A zero interval disables the limiter.
func WithRateInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithCache stores successful response bodies in cache for ttl and serves
// identical requests from it until they expire. A ttl <= 0 disables the cache.
func WithCache(cache PageCache, ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			c.cacheTTL = 0
			return
		}
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a client for the API rooted at baseURL
// (e.g. https://api.vndb.org/kana).
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/vn",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		validator:  validator.New(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// FetchPage requests a single page.
func (c *Client) FetchPage(ctx context.Context, query Query) (*Page, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(query.body())
	if err != nil {
		return nil, fmt.Errorf("vndb: encode request: %w", err)
	}

	cacheKey := c.cacheKey(payload)
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		page, err := c.decode(cached)
		if err == nil {
			return page, nil
		}
		c.logger.Warn("vndb_cache_entry_invalid", slog.String("key", cacheKey), slog.Any("error", err))
	}

	raw, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	page, err := c.decode(raw)
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, raw)
	return page, nil
}

// post sends one request and returns the body of a 2xx response.
func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.SourceUnavailable(fmt.Errorf("vndb: rate limiter: %w", err))
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("vndb: build request: %w", err)
	}
	request.Header.Set(constants.HeaderContentType, "application/json")
	request.Header.Set(constants.HeaderUserAgent, constants.UserAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, apperr.SourceUnavailable(fmt.Errorf("vndb: request failed: %w", err))
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.SourceUnavailable(fmt.Errorf("vndb: read body: %w", err))
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, apperr.SourceUnavailable(&StatusError{StatusCode: response.StatusCode, Body: string(body)})
	}

	return body, nil
}

// decode parses and structurally validates a response body.
func (c *Client) decode(raw []byte) (*Page, error) {
	var body responseBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperr.Decode(fmt.Errorf("vndb: decode response: %w", err))
	}

	if body.Results == nil || body.More == nil {
		return nil, apperr.Decode(fmt.Errorf("vndb: response is missing results or more"))
	}

	for i := range *body.Results {
		record := &(*body.Results)[i]
		if err := c.validator.Struct(record); err != nil {
			return nil, apperr.Decode(fmt.Errorf("vndb: record %d (%q) is invalid: %w", i, record.ID, err))
		}
	}

	return &Page{Records: *body.Results, More: *body.More}, nil
}

// # Page cache

func (c *Client) cacheKey(payload []byte) string {
	sum := sha256.Sum256(append([]byte(c.endpoint+"\n"), payload...))
	return constants.RedisPrefixVNDBPage + hex.EncodeToString(sum[:])
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}

	body, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("vndb_cache_get_failed", slog.Any("error", err))
		return nil, false
	}

	return body, found
}

func (c *Client) cacheSet(ctx context.Context, key string, body []byte) {
	if c.cache == nil {
		return
	}

	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.logger.Warn("vndb_cache_set_failed", slog.Any("error", err))
	}
}
