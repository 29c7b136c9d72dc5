package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stash/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyGoalName):
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrInvalidPagination):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrInsufficientFunds):
		var ife *core.InsufficientFundsError
		if errors.As(err, &ife) {
			writeErrorMessage(w, http.StatusBadRequest,
				fmt.Sprintf("%s (short %s)", ife.Error(), ife.Shortfall()))
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, core.ErrInsufficientFunds.Error())
	case errors.Is(err, core.ErrWalletNotFound),
		errors.Is(err, core.ErrGoalNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrAccountExists),
		errors.Is(err, core.ErrDuplicateOperation),
		errors.Is(err, core.ErrInvalidState):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrStoreUnavailable):
		slog.ErrorContext(r.Context(), "Store unavailable", "error", err, "path", r.URL.Path)
		writeErrorMessage(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parsePage reads limit/offset query parameters. Absent values fall back to
// the defaults; non-numeric or negative values are invalid input.
func parsePage(r *http.Request) (core.Page, error) {
	var page core.Page
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Page{}, core.ErrInvalidPagination
		}
		page.Limit = n
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Page{}, core.ErrInvalidPagination
		}
		page.Offset = n
	}
	if err := page.Validate(); err != nil {
		return core.Page{}, err
	}
	return page, nil
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return t, nil
}
