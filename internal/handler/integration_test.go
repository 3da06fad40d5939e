package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "time/tzdata"

	"github.com/tmvalente/drivelog/internal/blobstore"
	"github.com/tmvalente/drivelog/internal/handler"
	"github.com/tmvalente/drivelog/internal/repository/sqlite"
	"github.com/tmvalente/drivelog/internal/service"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files, err := blobstore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	loc, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}

	auth := service.NewAuthService(db.Users(), 4)
	types := service.NewActivityTypeService(db.ActivityTypes())
	activities := service.NewActivityService(db.Activities(), db.ActivityTypes(), files, loc)

	if err := types.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, types, activities)
	return handler.CORS(mux)
}

func registerUser(t *testing.T, srv http.Handler, name, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"nome": {name}, "senha": {password}}
	req := httptest.NewRequest(http.MethodPost, "/registrar_usuario", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func pngUpload(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 40))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func createActivityRequest(t *testing.T, fields map[string]string, photo []byte, photoName string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if photo != nil {
		part, err := mw.CreateFormFile("foto", photoName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/registrar_atividade", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRegisterUser(t *testing.T) {
	srv := newTestServer(t)

	w := registerUser(t, srv, "joao", "senha123")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp["mensagem"] != "Usuário registrado com sucesso" {
		t.Fatalf("unexpected message: %q", resp["mensagem"])
	}
}

func TestRegisterUser_Duplicate(t *testing.T) {
	srv := newTestServer(t)

	if w := registerUser(t, srv, "joao", "senha123"); w.Code != http.StatusOK {
		t.Fatalf("first register: %d", w.Code)
	}

	w := registerUser(t, srv, "joao", "outra456")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", w.Code)
	}
}

func TestListActivityTypes(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/tipos_atividade", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var types []struct {
		Codigo int    `json:"codigo"`
		Nome   string `json:"nome"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &types); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(types) != 8 {
		t.Fatalf("expected 8 types, got %d", len(types))
	}
	if types[0].Codigo != 1 || types[0].Nome != "Carga" {
		t.Fatalf("unexpected first type: %+v", types[0])
	}
}

func TestRegisterActivity_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "joao", "senha123")

	fields := map[string]string{
		"localizacao":  "38.7,-9.1",
		"nome_local":   "Lisboa",
		"tipo_codigo":  "1",
		"kilometragem": "1000",
	}

	// No credentials.
	req := createActivityRequest(t, fields, nil, "")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", w.Code)
	}

	// Wrong password.
	req = createActivityRequest(t, fields, nil, "")
	req.SetBasicAuth("joao", "errada")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong password, got %d", w.Code)
	}
}

func TestRegisterActivity_InvalidType(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "joao", "senha123")

	req := createActivityRequest(t, map[string]string{
		"localizacao":  "38.7,-9.1",
		"nome_local":   "Lisboa",
		"tipo_codigo":  "99",
		"kilometragem": "1000",
	}, nil, "")
	req.SetBasicAuth("joao", "senha123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type code, got %d", w.Code)
	}
}

func TestActivityRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "joao", "senha123")

	req := createActivityRequest(t, map[string]string{
		"localizacao":  "38.7223,-9.1393",
		"nome_local":   "Terminal de Lisboa",
		"tipo_codigo":  "2",
		"kilometragem": "245000",
		"pais":         "ES",
	}, pngUpload(t), "descarga.png")
	req.SetBasicAuth("joao", "senha123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("create activity: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// List it back.
	listReq := httptest.NewRequest(http.MethodGet, "/atividades", nil)
	listReq.SetBasicAuth("joao", "senha123")
	lw := httptest.NewRecorder()
	srv.ServeHTTP(lw, listReq)
	if lw.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", lw.Code)
	}

	var activities []struct {
		ID           int64   `json:"id"`
		DataHora     string  `json:"data_hora"`
		Localizacao  string  `json:"localizacao"`
		NomeLocal    string  `json:"nome_local"`
		TipoCodigo   int     `json:"tipo_codigo"`
		TipoTexto    string  `json:"tipo_texto"`
		Kilometragem int64   `json:"kilometragem"`
		FotoURL      *string `json:"foto_url"`
		Pais         string  `json:"pais"`
	}
	if err := json.Unmarshal(lw.Body.Bytes(), &activities); err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(activities))
	}

	a := activities[0]
	if a.Localizacao != "38.7223,-9.1393" || a.NomeLocal != "Terminal de Lisboa" || a.Pais != "ES" {
		t.Fatalf("field mismatch: %+v", a)
	}
	if a.TipoCodigo != 2 || a.TipoTexto != "Descarga" {
		t.Fatalf("type mismatch: %+v", a)
	}
	if a.Kilometragem != 245000 {
		t.Fatalf("expected odometer 245000, got %d", a.Kilometragem)
	}
	if _, err := time.Parse(service.TimestampLayout, a.DataHora); err != nil {
		t.Fatalf("timestamp %q not in expected format: %v", a.DataHora, err)
	}
	if a.FotoURL == nil {
		t.Fatal("expected foto_url for activity with photo")
	}

	// The photo URL must serve JPEG bytes without auth.
	photoReq := httptest.NewRequest(http.MethodGet, *a.FotoURL, nil)
	pw := httptest.NewRecorder()
	srv.ServeHTTP(pw, photoReq)
	if pw.Code != http.StatusOK {
		t.Fatalf("fetch photo: expected 200, got %d", pw.Code)
	}
	if ct := pw.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %q", ct)
	}
	if !bytes.HasPrefix(pw.Body.Bytes(), []byte{0xFF, 0xD8}) {
		t.Fatal("expected JPEG magic bytes")
	}
}

func TestListActivities_BadDate(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "joao", "senha123")

	req := httptest.NewRequest(http.MethodGet, "/atividades?data_inicio=10-01-2024", nil)
	req.SetBasicAuth("joao", "senha123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "joao", "senha123")

	req := createActivityRequest(t, map[string]string{
		"localizacao":  "38.7,-9.1",
		"nome_local":   "Lisboa",
		"tipo_codigo":  "1",
		"kilometragem": "1000",
	}, nil, "")
	req.SetBasicAuth("joao", "senha123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("create activity: %d", w.Code)
	}

	csvReq := httptest.NewRequest(http.MethodGet, "/exportar_csv", nil)
	csvReq.SetBasicAuth("joao", "senha123")
	cw := httptest.NewRecorder()
	srv.ServeHTTP(cw, csvReq)

	if cw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", cw.Code)
	}
	if cd := cw.Header().Get("Content-Disposition"); !strings.Contains(cd, "atividades.csv") {
		t.Fatalf("expected atividades.csv attachment, got %q", cd)
	}

	header, _, _ := strings.Cut(cw.Body.String(), "\n")
	if header != "Data/Hora,Localização,Nome do Local,Tipo,Kilometragem,País" {
		t.Fatalf("unexpected CSV header: %q", header)
	}
}

func TestFetchPhoto_NotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/uploads/999_nada.jpg", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
