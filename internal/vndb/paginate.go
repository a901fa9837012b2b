// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vndb

import (
	"context"
	"log/slog"

	"github.com/taibuivan/vnshelf/internal/platform/ctxutil"
	"github.com/taibuivan/vnshelf/internal/platform/validate"
)

// PageFetcher fetches one page. [*Client] is the production implementation.
type PageFetcher interface {
	FetchPage(ctx context.Context, query Query) (*Page, error)
}

// Result is the outcome of a complete pagination pass.
type Result struct {
	Records []RawRecord
	// Pages is the number of pages fetched.
	Pages int
	// Truncated is set when the ceiling stopped the loop while the source
	// still reported more data. The record set is then known-incomplete.
	Truncated bool
}

// FetchAll walks pages 1..n until the source reports no more data or the
// page ceiling is reached.
//
// The Page field of query is ignored. A failure on any page discards what
// was accumulated and returns only the error.
func FetchAll(ctx context.Context, fetcher PageFetcher, query Query, ceiling int) (*Result, error) {
	if err := (&validate.Validator{}).Min("ceiling", ceiling, 1).Err(); err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(ctx)
	result := &Result{}

	for pageIndex := 1; ; pageIndex++ {
		query.Page = pageIndex

		page, err := fetcher.FetchPage(ctx, query)
		if err != nil {
			return nil, err
		}

		result.Records = append(result.Records, page.Records...)
		result.Pages = pageIndex

		logger.Debug("page_fetched",
			slog.Int("page", pageIndex),
			slog.Int("records", len(page.Records)),
			slog.Bool("more", page.More),
		)

		if !page.More {
			return result, nil
		}

		if pageIndex >= ceiling {
			result.Truncated = true
			return result, nil
		}
	}
}
