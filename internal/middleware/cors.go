package middleware

import "net/http"

// CORS allows the browser-based operator display to call the API from its
// own origin. With no origins configured, all origins are allowed.
type CORS struct {
	allowedOrigins []string
}

// NewCORS creates the CORS middleware.
func NewCORS(allowedOrigins ...string) *CORS {
	return &CORS{allowedOrigins: allowedOrigins}
}

// Wrap adds CORS headers and answers preflight requests.
func (c *CORS) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && c.allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *CORS) allowed(origin string) bool {
	if len(c.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.allowedOrigins {
		if allowed == origin || allowed == "*" {
			return true
		}
	}
	return false
}
