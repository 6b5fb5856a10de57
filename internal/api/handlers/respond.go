package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/scorecard/internal/contracts"
)

const dateLayout = "2006-01-02"

// validate is safe for concurrent use and caches struct metadata
var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain validation errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrInvalidDate), errors.Is(err, contracts.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrUnknownTicker):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
// An empty body is accepted as the zero request.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return err
		}
	}
	return validate.Struct(dst)
}

// queryLimit parses ?limit= within [1, max], falling back to def
func queryLimit(r *http.Request, def, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// parseDate parses YYYY-MM-DD, or returns def when raw is empty
func parseDate(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, contracts.ErrInvalidDate
	}
	return t, nil
}
