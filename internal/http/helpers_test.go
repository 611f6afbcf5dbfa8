package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/repository"
	"task-manager/internal/service"
)

const testSecret = "secret"

type testServer struct {
	router *gin.Engine
	jwt    *service.JWTService
}

func newTestServer(t *testing.T, ping func(ctx context.Context) error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	jwtSvc := service.NewJWTService(testSecret, time.Hour, "")
	authSvc := service.NewAuthService(logger, repository.NewMemoryUserRepository(), service.NewBcryptHasher(bcrypt.MinCost), jwtSvc)
	taskSvc := service.NewTaskService(logger, repository.NewMemoryTaskRepository())

	router := NewRouter(
		logger,
		nil,
		jwtSvc,
		NewAuthHandler(logger, authSvc, nil),
		NewTaskHandler(logger, taskSvc, nil),
		NewHealthHandler(logger, ping),
		RouterConfig{CORSAllowedOrigin: "*"},
	)
	return &testServer{router: router, jwt: jwtSvc}
}

func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	return body.Message
}

// registerAndLogin crea un usuario y devuelve su token.
func (s *testServer) registerAndLogin(t *testing.T, name, email, password string) string {
	t.Helper()
	rec := performRequest(s.router, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
	rec = performRequest(s.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &body)
	return body.Token
}
