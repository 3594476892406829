package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes body as the response with the given status code.
func WriteJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, text string, statusCode int) {
	WriteJSON(w, errorResponse{Error: text}, statusCode)
}
