package handler

import (
	"net/http"

	"github.com/tmvalente/drivelog/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, types *service.ActivityTypeService, activities *service.ActivityService) {
	users := NewUserHandler(auth)
	typeHandler := NewActivityTypeHandler(types)
	activityHandler := NewActivityHandler(activities)
	photos := NewPhotoHandler(activities)

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("POST /registrar_usuario", users.HandleRegister)
	mux.HandleFunc("GET /tipos_atividade", typeHandler.HandleList)
	mux.HandleFunc("GET /uploads/{filename}", photos.HandleServe)

	mux.Handle("POST /registrar_atividade", RequireAuth(auth, http.HandlerFunc(activityHandler.HandleCreate)))
	mux.Handle("GET /atividades", RequireAuth(auth, http.HandlerFunc(activityHandler.HandleList)))
	mux.Handle("GET /exportar_csv", RequireAuth(auth, http.HandlerFunc(activityHandler.HandleExportCSV)))
}
