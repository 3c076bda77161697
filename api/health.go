package api

import "net/http"

// HandleHealth reports process liveness.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
