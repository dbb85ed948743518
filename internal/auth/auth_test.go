package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":       "athlete-1",
		"tenant_id": "tenant-1",
		"iss":       "traindash.identity",
		"scopes":    []string{ScopeTrainingRead, ScopeTrainingWrite},
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
}

func testConfig() Config {
	return Config{Secret: testSecret, Issuer: "traindash.identity"}
}

func TestParseValidToken(t *testing.T) {
	claims, err := Parse(signToken(t, baseClaims()), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "athlete-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.TenantID != "tenant-1" {
		t.Fatalf("unexpected tenant %q", claims.TenantID)
	}
	if !claims.HasScope(ScopeTrainingWrite) {
		t.Fatal("expected write scope")
	}
	if claims.HasScope("admin") {
		t.Fatal("did not expect admin scope")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	mapClaims := baseClaims()
	mapClaims["iss"] = "someone-else"

	if _, err := Parse(signToken(t, mapClaims), testConfig()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	mapClaims := baseClaims()
	mapClaims["exp"] = time.Now().Add(-time.Hour).Unix()

	if _, err := Parse(signToken(t, mapClaims), testConfig()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestParseRejectsMissingExpiry(t *testing.T) {
	mapClaims := baseClaims()
	delete(mapClaims, "exp")

	claims, err := Parse(signToken(t, mapClaims), testConfig())
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
	if claims != nil {
		t.Fatalf("expected nil claims, got %+v", claims)
	}
}

func TestParseRejectsMissingTenant(t *testing.T) {
	mapClaims := baseClaims()
	delete(mapClaims, "tenant_id")

	if _, err := Parse(signToken(t, mapClaims), testConfig()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := Parse(signed, testConfig()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestParseEmptyToken(t *testing.T) {
	if _, err := Parse("   ", testConfig()); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken got %v", err)
	}
}

func TestParseSpaceSeparatedScopes(t *testing.T) {
	mapClaims := baseClaims()
	mapClaims["scopes"] = "training:read  training:write"

	claims, err := Parse(signToken(t, mapClaims), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.HasScope(ScopeTrainingRead) || !claims.HasScope(ScopeTrainingWrite) {
		t.Fatalf("expected both scopes, got %v", claims.Scopes)
	}
}

func TestMiddlewareInjectsClaims(t *testing.T) {
	middleware := NewMiddleware(testConfig(), nil)

	var seen *Claims
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, baseClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if seen == nil || seen.TenantID != "tenant-1" {
		t.Fatalf("expected claims in context, got %+v", seen)
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	middleware := NewMiddleware(testConfig(), nil)
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestMiddlewareSkipper(t *testing.T) {
	middleware := NewMiddleware(testConfig(), func(r *http.Request) bool {
		return r.URL.Path == "/healthz"
	})

	called := false
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected skipper to bypass auth")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
