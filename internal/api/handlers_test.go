package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesikahq/patient-registry/internal/auth"
	"github.com/mesikahq/patient-registry/internal/patient"
	"github.com/mesikahq/patient-registry/internal/respond"
)

// --- Stubs ---

type stubAuth struct {
	loginFn    func(ctx context.Context, username, password string) (*auth.TokenData, error)
	validateFn func(ctx context.Context, token string) (*auth.Claims, error)
}

func (s *stubAuth) Login(ctx context.Context, username, password string) (*auth.TokenData, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, username, password)
	}
	return nil, auth.ErrInvalidCredentials
}

func (s *stubAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.validateFn != nil {
		return s.validateFn(ctx, token)
	}
	return nil, auth.ErrInvalidToken
}

type stubPatients struct {
	createFn func(ctx context.Context, in patient.CreateInput, actingUser string) *respond.Envelope
	listFn   func(ctx context.Context, q patient.ListQuery) *respond.Envelope
	getFn    func(ctx context.Context, id int) *respond.Envelope
	updateFn func(ctx context.Context, id int, in patient.UpdateInput, actingUser string) *respond.Envelope
	deleteFn func(ctx context.Context, id int, actingUser string) *respond.Envelope
}

func (s *stubPatients) Create(ctx context.Context, in patient.CreateInput, actingUser string) *respond.Envelope {
	return s.createFn(ctx, in, actingUser)
}

func (s *stubPatients) List(ctx context.Context, q patient.ListQuery) *respond.Envelope {
	return s.listFn(ctx, q)
}

func (s *stubPatients) Get(ctx context.Context, id int) *respond.Envelope {
	return s.getFn(ctx, id)
}

func (s *stubPatients) Update(ctx context.Context, id int, in patient.UpdateInput, actingUser string) *respond.Envelope {
	return s.updateFn(ctx, id, in, actingUser)
}

func (s *stubPatients) Delete(ctx context.Context, id int, actingUser string) *respond.Envelope {
	return s.deleteFn(ctx, id, actingUser)
}

func adminAuth() *stubAuth {
	return &stubAuth{
		validateFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			if token == "good-token" {
				return &auth.Claims{Username: "admin", Role: "admin"}, nil
			}
			return nil, auth.ErrInvalidToken
		},
	}
}

func setupRouter(authService auth.Service, patients patient.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(authService, patients)
	return NewRouter(handler, authService).SetupRouter(zap.NewNop())
}

func perform(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response envelope: %v (body: %s)", err, w.Body.String())
	}
	return envelope
}

// --- Tests ---

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := setupRouter(adminAuth(), &stubPatients{})

	w := perform(router, http.MethodGet, "/api/v1/pacientes", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["success"] != false || envelope["code"] != float64(401) {
		t.Errorf("unexpected envelope: %v", envelope)
	}
}

func TestInvalidTokenIsForbidden(t *testing.T) {
	router := setupRouter(adminAuth(), &stubPatients{})

	w := perform(router, http.MethodGet, "/api/v1/pacientes", "",
		map[string]string{"Authorization": "Bearer expired-token"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestLoginWithoutBasicAuth(t *testing.T) {
	router := setupRouter(&stubAuth{}, &stubPatients{})

	w := perform(router, http.MethodPost, "/api/v1/autenticacion/login", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	authService := &stubAuth{
		loginFn: func(ctx context.Context, username, password string) (*auth.TokenData, error) {
			if username == "admin" && password == "veris123" {
				return &auth.TokenData{Token: "issued", Type: "Bearer", ExpiresIn: 3600}, nil
			}
			return nil, auth.ErrInvalidCredentials
		},
	}
	router := setupRouter(authService, &stubPatients{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/autenticacion/login", nil)
	req.SetBasicAuth("admin", "veris123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	if data["token"] != "issued" || data["type"] != "Bearer" || data["expiresIn"] != float64(3600) {
		t.Errorf("unexpected login payload: %v", data)
	}
}

func TestCreatePassesActingUser(t *testing.T) {
	var gotActingUser string
	patients := &stubPatients{
		createFn: func(ctx context.Context, in patient.CreateInput, actingUser string) *respond.Envelope {
			gotActingUser = actingUser
			return respond.OK(http.StatusCreated, "Paciente creado exitosamente", nil)
		},
	}
	router := setupRouter(adminAuth(), patients)

	w := perform(router, http.MethodPost, "/api/v1/pacientes",
		`{"numero_identificacion":"1765432109","codigo_tipo_identificacion":"CED","primer_nombre":"Sofia","primer_apellido":"Torres"}`,
		map[string]string{"Authorization": "Bearer good-token"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if gotActingUser != "admin" {
		t.Errorf("expected acting user admin, got %q", gotActingUser)
	}
}

func TestListParsesQuery(t *testing.T) {
	var gotQuery patient.ListQuery
	patients := &stubPatients{
		listFn: func(ctx context.Context, q patient.ListQuery) *respond.Envelope {
			gotQuery = q
			return respond.OK(http.StatusOK, "Pacientes obtenidos exitosamente", gin.H{})
		},
	}
	router := setupRouter(adminAuth(), patients)

	w := perform(router, http.MethodGet,
		"/api/v1/pacientes?page=2&limit=5&estado=I&nombre_completo=Pedro", "",
		map[string]string{"Authorization": "Bearer good-token"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotQuery.Page != 2 || gotQuery.Limit != 5 {
		t.Errorf("expected page 2 limit 5, got %d %d", gotQuery.Page, gotQuery.Limit)
	}
	if gotQuery.Filters.Status != "I" || gotQuery.Filters.FullName != "Pedro" {
		t.Errorf("unexpected filters: %+v", gotQuery.Filters)
	}
}

func TestGetPassesThroughEnvelopeCode(t *testing.T) {
	patients := &stubPatients{
		getFn: func(ctx context.Context, id int) *respond.Envelope {
			return respond.Fail(http.StatusNotFound, "Paciente no encontrado", nil)
		},
	}
	router := setupRouter(adminAuth(), patients)

	w := perform(router, http.MethodGet, "/api/v1/pacientes/99", "",
		map[string]string{"Authorization": "Bearer good-token"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateRejectsNonNumericID(t *testing.T) {
	router := setupRouter(adminAuth(), &stubPatients{})

	w := perform(router, http.MethodPut, "/api/v1/pacientes/abc", `{"primer_nombre":"Pedro"}`,
		map[string]string{"Authorization": "Bearer good-token"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeletePassesActingUser(t *testing.T) {
	var gotID int
	var gotActingUser string
	patients := &stubPatients{
		deleteFn: func(ctx context.Context, id int, actingUser string) *respond.Envelope {
			gotID, gotActingUser = id, actingUser
			return respond.OK(http.StatusOK, "Paciente eliminado exitosamente (baja lógica)", gin.H{})
		},
	}
	router := setupRouter(adminAuth(), patients)

	w := perform(router, http.MethodDelete, "/api/v1/pacientes/5", "",
		map[string]string{"Authorization": "Bearer good-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != 5 || gotActingUser != "admin" {
		t.Errorf("expected id 5 acting user admin, got %d %q", gotID, gotActingUser)
	}
}
