package api

import (
	"encoding/json"
	"net/http"

	"gatherhub/guestsync/internal/models/dtos"
)

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, dtos.ErrorResponse{Error: message})
}
