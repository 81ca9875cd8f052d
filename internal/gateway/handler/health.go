package handler

import (
	"encoding/json"
	"net/http"
)

// HandleHealth reports liveness and the configured model.
func HandleHealth(model string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "model": model})
	}
}
