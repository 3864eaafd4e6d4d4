package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestAuth(t *testing.T) *JWTAuth {
	t.Helper()
	hash, err := HashPassword("operator-secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewJWTAuth(JWTAuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test-secret",
		JWTExpiryHours:    1,
		SkipPaths:         []string{"/health", "/auth/*"},
	})
}

func TestValidateCredentials(t *testing.T) {
	auth := newTestAuth(t)

	if !auth.ValidateCredentials("admin", "operator-secret") {
		t.Error("expected valid credentials accepted")
	}
	if auth.ValidateCredentials("admin", "wrong") {
		t.Error("expected wrong password rejected")
	}
	if auth.ValidateCredentials("intruder", "operator-secret") {
		t.Error("expected wrong username rejected")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuth(t)

	token, err := auth.GenerateToken("admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %q", claims.Username)
	}
	if claims.Issuer != "alertdeck" {
		t.Errorf("expected issuer alertdeck, got %q", claims.Issuer)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	auth := newTestAuth(t)

	claims := UserClaims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := auth.ValidateToken(signed); err == nil {
		t.Error("expected expired token rejected")
	}
}

func TestWrap(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := auth.GenerateToken("admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{"no token", "/api/alerts", "", http.StatusUnauthorized},
		{"bad token", "/api/alerts", "Bearer garbage", http.StatusUnauthorized},
		{"valid token", "/api/alerts", "Bearer " + token, http.StatusOK},
		{"skip exact path", "/health", "", http.StatusOK},
		{"skip wildcard path", "/auth/login", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generated when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Header().Get(RequestIDHeader) == "" {
			t.Error("expected generated request ID header")
		}
		if seen == "" {
			t.Error("expected request ID in context")
		}
	})

	t.Run("client ID reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-id-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Header().Get(RequestIDHeader) != "client-id-1" {
			t.Errorf("expected client ID echoed, got %q", rr.Header().Get(RequestIDHeader))
		}
	})
}
