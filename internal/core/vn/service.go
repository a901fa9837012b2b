// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import (
	"context"
	"log/slog"

	"github.com/taibuivan/vnshelf/internal/platform/validate"
	"github.com/taibuivan/vnshelf/pkg/pagination"
)

// maxQueryLength bounds the title search term.
const maxQueryLength = 200

// Service implements the read use cases of the catalog API.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListVisualNovels validates the filter and returns one page of the catalog.
func (service *Service) ListVisualNovels(context context.Context, filter Filter, params pagination.Params) ([]*VisualNovel, int, error) {
	if filter.Sort == "" {
		filter.Sort = SortVoteCount
	}

	validator := &validate.Validator{}
	validator.
		OneOf("sort", filter.Sort, SortVoteCount, SortRating, SortReleased).
		MaxLen("q", filter.Query, maxQueryLength).
		MaxLen("tag", filter.Tag, maxQueryLength)

	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	return service.repo.List(context, filter, params.Limit, params.Offset())
}

func (service *Service) GetVisualNovel(context context.Context, id string) (*VisualNovel, error) {
	validator := &validate.Validator{}
	validator.Required("id", id).MaxLen("id", id, 50)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.repo.GetByID(context, id)
}
