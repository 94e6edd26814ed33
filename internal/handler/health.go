package handler

import (
	"net/http"
)

// Health reports liveness for deploy probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
