package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tmvalente/drivelog/internal/domain"
	"github.com/tmvalente/drivelog/internal/service"
)

// UserHandler handles user registration.
type UserHandler struct {
	auth *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// HandleRegister processes a registration form.
// POST /registrar_usuario
// Form fields: nome, senha
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Requisição inválida")
			return
		}
	}

	name := r.FormValue("nome")
	password := r.FormValue("senha")

	_, err := h.auth.Register(r.Context(), name, password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			writeError(w, http.StatusBadRequest, "Usuário já existe")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("register user", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	writeMessage(w, http.StatusOK, "Usuário registrado com sucesso")
}
