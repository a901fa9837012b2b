// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vnshelf/internal/platform/request"
	"github.com/taibuivan/vnshelf/internal/platform/respond"
	"github.com/taibuivan/vnshelf/pkg/pagination"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read endpoints on router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listVisualNovels)
	router.Get("/{id}", handler.getVisualNovel)
}

func (handler *Handler) listVisualNovels(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := Filter{
		Query: requestutil.Query(request, "q"),
		Tag:   requestutil.Query(request, "tag"),
		Sort:  requestutil.Query(request, "sort"),
	}

	novels, total, err := handler.service.ListVisualNovels(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, novels, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getVisualNovel(writer http.ResponseWriter, request *http.Request) {
	novel, err := handler.service.GetVisualNovel(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, novel)
}
