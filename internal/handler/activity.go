package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tmvalente/drivelog/internal/domain"
	"github.com/tmvalente/drivelog/internal/service"
)

// maxUploadBytes caps the multipart form size for activity registration.
const maxUploadBytes = 15 << 20

// ActivityHandler handles activity registration, listing, and CSV export.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// HandleCreate registers a new activity for the authenticated user.
// POST /registrar_atividade
// Multipart form: localizacao, nome_local, tipo_codigo, kilometragem,
// pais (optional, defaults to PT), foto (optional file).
func (h *ActivityHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Usuário ou senha incorretos")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}

	typeCode, err := strconv.Atoi(r.FormValue("tipo_codigo"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Tipo de atividade inválido")
		return
	}

	odometer, err := strconv.ParseInt(r.FormValue("kilometragem"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Kilometragem inválida")
		return
	}

	input := service.CreateActivityInput{
		Location:  r.FormValue("localizacao"),
		PlaceName: r.FormValue("nome_local"),
		TypeCode:  typeCode,
		Odometer:  odometer,
		Country:   r.FormValue("pais"),
	}

	file, header, err := r.FormFile("foto")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			slog.Error("read photo upload", "error", err)
			writeError(w, http.StatusInternalServerError, "Erro interno")
			return
		}
		input.PhotoData = data
		input.PhotoFilename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// Photo is optional.
	default:
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}

	_, err = h.activities.Create(r.Context(), user, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidActivityType) {
			writeError(w, http.StatusBadRequest, "Tipo de atividade inválido")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("create activity", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	writeMessage(w, http.StatusOK, "Atividade registrada com sucesso")
}

// HandleList returns the authenticated user's activities, oldest first.
// GET /atividades?data_inicio=YYYY-MM-DD&data_fim=YYYY-MM-DD&tipos=1,2,5
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Usuário ou senha incorretos")
		return
	}

	q := r.URL.Query()
	views, err := h.activities.List(r.Context(), user.ID, q.Get("data_inicio"), q.Get("data_fim"), q.Get("tipos"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateFormat) {
			writeError(w, http.StatusBadRequest, "Formato de data inválido, use YYYY-MM-DD")
			return
		}
		slog.Error("list activities", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	writeJSON(w, http.StatusOK, toActivityDTOs(views))
}

// HandleExportCSV streams all of the user's activities as a CSV attachment.
// GET /exportar_csv
func (h *ActivityHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Usuário ou senha incorretos")
		return
	}

	data, err := h.activities.ExportCSV(r.Context(), user.ID)
	if err != nil {
		slog.Error("export csv", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="atividades.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
