// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/middleware"
)

// statusFor maps an error code to the HTTP status it is reported with.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidInput:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict, apperr.CodeConcurrencyConflict:
		return http.StatusConflict
	case apperr.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Messages of caller mistakes are
// passed through; storage and internal failures are logged and replaced
// by a generic message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(apperr.CodeOf(err))

	var e *apperr.Error
	message := fallback
	if status < http.StatusInternalServerError && errors.As(err, &e) && e.Message != "" {
		message = e.Message
	}
	if status >= http.StatusInternalServerError {
		slog.Error(fallback, "status", status, "error", err)
	}

	middleware.ErrorResponse(w, status, message)
}
