package handler

import (
	"log/slog"
	"net/http"

	"github.com/tmvalente/drivelog/internal/service"
)

// ActivityTypeHandler serves the fixed activity type registry.
type ActivityTypeHandler struct {
	types *service.ActivityTypeService
}

// NewActivityTypeHandler creates a new ActivityTypeHandler.
func NewActivityTypeHandler(types *service.ActivityTypeService) *ActivityTypeHandler {
	return &ActivityTypeHandler{types: types}
}

// HandleList returns all activity types ordered by code.
// GET /tipos_atividade
func (h *ActivityTypeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.List(r.Context())
	if err != nil {
		slog.Error("list activity types", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	writeJSON(w, http.StatusOK, toActivityTypeDTOs(types))
}
