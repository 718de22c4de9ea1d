// Package handler exposes the HTTP API. Handlers decode and validate
// requests, delegate to stores and services, and map domain errors to
// status codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/ticket"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseIDParam reads the {id} path value and validates the 24-hex format.
func parseIDParam(r *http.Request) (model.ID, error) {
	return model.ParseID(r.PathValue("id"))
}

// writeServiceError maps ticket service errors onto the API's status codes:
// unknown resources are 404, undefined state transitions are 409, anything
// else is a storage failure.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ticket.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "storage failure")
	}
}
