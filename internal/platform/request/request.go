// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction so handlers
stay independent of chi.
*/
package requestutil

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

/*
ID retrieves a named URL parameter holding a catalog identifier (e.g. "v11").
*/
func ID(request *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(request, name))
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Query returns a trimmed query string value, or "" when absent.
func Query(request *http.Request, name string) string {
	return strings.TrimSpace(request.URL.Query().Get(name))
}
