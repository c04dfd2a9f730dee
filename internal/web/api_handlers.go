package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/auth"
	"github.com/evcraddock/bloggu/internal/user"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed REST call.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// apiError writes err as a JSON error response with the status of its kind.
// Internal details are logged, never sent.
func apiError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	code := apperr.HTTPStatus(e.Kind)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "error", err)
	}
	apiJSON(w, errorResponse{Error: e.Message, Kind: string(e.Kind)}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(apperr.Invalid, "request body too large")
		}
		return apperr.New(apperr.Invalid, "invalid JSON body")
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.New(apperr.Invalid, "invalid ID")
	}
	return id, nil
}

// requester returns the authenticated user or writes the authentication failure.
func requester(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	u, err := auth.Requester(r.Context())
	if err != nil {
		apiError(w, r, err)
		return nil, false
	}
	return u, true
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}
