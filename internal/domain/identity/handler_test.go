package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = httpapi.NewValidator()
	return e
}

func TestRegisterPatientHandler(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	body := `{"email":"jane@example.com","password":"secret123","name":"Jane","gender":"FEMALE"}`
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/patient", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RegisterPatient(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token in response")
	}
	if _, leaked := resp.User["password_hash"]; leaked {
		t.Error("password hash leaked in response")
	}
}

func TestRegisterPatientHandler_MissingFields(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/patient", strings.NewReader(`{"email":"jane@example.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RegisterPatient(c)
	var appErr *httpapi.Error
	if !errors.As(err, &appErr) || appErr.Kind != httpapi.KindInvalid {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestMeHandler(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	reg, err := svc.RegisterPatient(context.Background(), RegisterPatientRequest{
		Email: "me@example.com", Password: "secret123", Name: "Me", Gender: "OTHER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), reg.User.ID, RolePatient)))

	if err := h.Me(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user["email"] != "me@example.com" {
		t.Errorf("unexpected email %v", user["email"])
	}
}

func TestGetDoctorHandler_BadID(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/users/doctors/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.GetDoctor(c)
	var appErr *httpapi.Error
	if !errors.As(err, &appErr) || appErr.Kind != httpapi.KindInvalid {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestRoutes_DoctorBrowsingIsPublic(t *testing.T) {
	svc, _, issuer := newTestService()
	h := NewHandler(svc)

	e := newTestEcho()
	e.HTTPErrorHandler = httpapi.ErrorHandler(zerolog.Nop())
	api := e.Group("/api")
	users := e.Group("/api/users", auth.Middleware(issuer))
	h.RegisterRoutes(api, users)

	// Anonymous browsing of the doctor directory works without a token.
	req := httptest.NewRequest(http.MethodGet, "/api/users/doctors", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous doctor listing, got %d", rec.Code)
	}

	// Profile routes still require authentication.
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous /me, got %d", rec.Code)
	}
}
