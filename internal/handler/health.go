package handler

import "net/http"

// HandleHealthz reports liveness. No dependencies are checked; a response at
// all means the process is up.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
