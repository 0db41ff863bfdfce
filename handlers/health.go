package handlers

import "net/http"

// Health is the liveness probe. It reports healthy whenever the process is
// serving; it deliberately does not touch the backing store.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
