// Helper functions for sending standardized JSON responses.

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/offline"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// If marshaling fails, return an error response
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondOffline writes the offline payload used when content is neither
// reachable nor downloaded.
func RespondOffline(w http.ResponseWriter, message string) {
	RespondWithJSON(w, http.StatusServiceUnavailable, map[string]any{
		"status":  "offline",
		"message": message,
		"data":    map[string]any{},
	})
}

// respondContentError maps a content read failure to a response.
func respondContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Content not found")
	case errors.Is(err, offline.ErrNotAvailableOffline):
		RespondOffline(w, "You are offline and this content has not been downloaded yet.")
	default:
		log.Printf("api: content read failed: %v", err)
		RespondWithError(w, http.StatusBadGateway, "Upstream content service failed")
	}
}
