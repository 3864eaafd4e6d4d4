package middleware

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alertdeck/alertdeck/internal/api"
)

// UserClaims are the JWT claims issued to an operator session.
type UserClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTAuthConfig holds authentication configuration.
type JWTAuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string // bcrypt hash
	JWTSecret         string
	JWTExpiryHours    int

	// SkipPaths bypass authentication; a trailing "*" matches a prefix.
	SkipPaths []string
}

// JWTAuth is the bearer-token authentication middleware for the operator API.
type JWTAuth struct {
	config   JWTAuthConfig
	skipList []string
}

type contextKey string

const userContextKey contextKey = "user"

// NewJWTAuth creates the authentication middleware.
func NewJWTAuth(config JWTAuthConfig) *JWTAuth {
	return &JWTAuth{config: config, skipList: config.SkipPaths}
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// ValidateCredentials checks a username/password pair against the configured
// admin account.
func (a *JWTAuth) ValidateCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.config.AdminUsername)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.config.AdminPasswordHash), []byte(password)) == nil
}

// GenerateToken issues a signed token for a user.
func (a *JWTAuth) GenerateToken(username string) (string, error) {
	claims := UserClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(a.config.JWTExpiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "alertdeck",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.JWTSecret))
}

// ValidateToken parses and verifies a token, returning its claims.
func (a *JWTAuth) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(a.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// TokenTTL returns the configured token lifetime in seconds.
func (a *JWTAuth) TokenTTL() int {
	return a.config.JWTExpiryHours * 3600
}

// Wrap enforces authentication on a handler.
func (a *JWTAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractBearer(r)
		if tokenString == "" {
			a.unauthorized(w, "Missing authentication token")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWTAuth: invalid token from %s: %v", r.RemoteAddr, err)
			a.unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the authenticated username, or "".
func GetUserFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(userContextKey).(string); ok {
		return user
	}
	return ""
}

func (a *JWTAuth) shouldSkip(path string) bool {
	for _, skip := range a.skipList {
		if skip == path {
			return true
		}
		if strings.HasSuffix(skip, "*") && strings.HasPrefix(path, strings.TrimSuffix(skip, "*")) {
			return true
		}
	}
	return false
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (a *JWTAuth) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="API"`)
	api.RespondError(w, http.StatusUnauthorized, message)
}
