package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/roach88/stockroom/internal/domain"
)

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Available  *int   `json:"available,omitempty"`
}

// MessageBody is returned by deletes.
type MessageBody struct {
	Message string `json:"message"`
}

// Codes for failures that do not come from the engine.
const (
	codeBadRequest       = "BAD_REQUEST"
	codeRouteNotFound    = "ROUTE_NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeInternal         = "INTERNAL"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput, domain.KindPastDate:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientStock, domain.KindConflict:
		return http.StatusConflict
	case domain.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("write response", "error", err)
	}
}

// writeError renders err. Domain errors keep their message; anything else
// is reported as an internal error without its details.
func (a *API) writeError(w http.ResponseWriter, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		a.logger.Error("unclassified failure", "error", err)
		a.writeFailure(w, http.StatusInternalServerError, codeInternal, "internal error", nil)
		return
	}

	var available *int
	if de.Kind == domain.KindInsufficientStock {
		n := de.Available
		available = &n
	}
	a.writeFailure(w, StatusFor(de.Kind), string(de.Kind), de.Message, available)
}

func (a *API) writeFailure(w http.ResponseWriter, status int, code, message string, available *int) {
	a.writeJSON(w, status, ErrorBody{
		Timestamp:  a.now().UTC().Format(time.RFC3339Nano),
		StatusCode: status,
		Code:       code,
		Message:    message,
		Available:  available,
	})
}

func (a *API) badRequest(w http.ResponseWriter, format string, args ...any) {
	a.writeFailure(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf(format, args...), nil)
}

func (a *API) notFound(w http.ResponseWriter, r *http.Request) {
	a.writeFailure(w, http.StatusNotFound, codeRouteNotFound, "no route for "+r.URL.Path, nil)
}

func (a *API) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path), nil)
}

// decode reads a JSON body into v, rejecting unknown fields and trailing
// data.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}
