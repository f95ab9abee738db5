package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/postlane/postlane/pkg/segment"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError maps domain errors to HTTP status codes. Unrecognized errors
// become an opaque 500; the real cause goes to the log, not the client.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "something went wrong"

	switch {
	case errors.Is(err, segment.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "segment not found"
	case errors.Is(err, segment.ErrNameTaken):
		status, code, message = http.StatusConflict, "name_taken", "a segment with this name already exists"
	case errors.Is(err, segment.ErrInvalidDate), errors.Is(err, segment.ErrInvalidValue):
		status, code, message = http.StatusUnprocessableEntity, "invalid_condition", err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	respondJSON(w, status, body)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badRequest(w http.ResponseWriter, message string) {
	var body errorBody
	body.Error.Code = "bad_request"
	body.Error.Message = message
	respondJSON(w, http.StatusBadRequest, body)
}
