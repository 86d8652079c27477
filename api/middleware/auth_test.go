package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/koxixo/orders-backend/pkg/auth"
	"github.com/koxixo/orders-backend/pkg/config"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/koxixo/orders-backend/pkg/logger"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "koxixo-test",
		ExpirationMinutes: 15,
	}
}

func authTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Output: io.Discard})
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(testJWTConfig(), authTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(testJWTConfig(), authTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := testJWTConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: 42,
		Role:   enums.UserRoleOrcamento,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotUser int64
	var gotRole string
	handler := Auth(cfg, authTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUser != 42 {
		t.Fatalf("expected user 42 in context, got %d", gotUser)
	}
	if gotRole != string(enums.UserRoleOrcamento) {
		t.Fatalf("expected orcamento role in context, got %q", gotRole)
	}
}

func TestRequireRoleAdminAlwaysPasses(t *testing.T) {
	handler := RequireRole(authTestLogger(), enums.UserRoleProducao)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleAdmin)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected admin to pass, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleVendedor)))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected vendedor to be blocked, got %d", w.Code)
	}
}
