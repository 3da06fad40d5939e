package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tmvalente/drivelog/internal/domain"
	"github.com/tmvalente/drivelog/internal/service"
)

// PhotoHandler serves stored photo files.
type PhotoHandler struct {
	activities *service.ActivityService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(activities *service.ActivityService) *PhotoHandler {
	return &PhotoHandler{activities: activities}
}

// HandleServe returns raw photo bytes by filename. A cache miss falls back
// to the activity row before answering 404.
// GET /uploads/{filename}
func (h *PhotoHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	data, err := h.activities.LoadPhoto(r.Context(), filename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "Arquivo não encontrado")
			return
		}
		slog.Error("serve photo", "error", err, "filename", filename)
		writeError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
