// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/vnshelf/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The action names the failing operation and is kept in the cause for logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code),
			pgerrcode.IsDataException(pgErr.Code):
			return apperr.WriteConflict(cause)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsOperatorIntervention(pgErr.Code):
			return apperr.StoreConnection(cause)
		}
		return apperr.Internal(cause)
	}

	// 3. Errors raised before the server answered
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return apperr.StoreConnection(cause)
	}

	// 4. Unknown errors become Internal Server Errors
	return apperr.Internal(cause)
}
