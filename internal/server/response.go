package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/me/seqqc/pkg/model"
)

// requestID generates a short request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, model.Response{Data: data})
}

func respondList(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	respondJSON(w, http.StatusOK, reqID, model.Response{Data: data, Pagination: pg})
}

// respondError derives the status from the error code.
func respondError(w http.ResponseWriter, reqID string, apiErr *model.APIError) {
	respondJSON(w, apiErr.Code.HTTPStatus(), reqID, model.Response{Status: "error", Error: apiErr})
}

// respondJSON fills in the envelope fields of resp and writes it. History
// changes with every tool run, so API replies are never cached.
func respondJSON(w http.ResponseWriter, status int, reqID string, resp model.Response) {
	if resp.Status == "" {
		resp.Status = "ok"
	}
	resp.RequestID = reqID
	resp.Timestamp = time.Now().UTC()

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
