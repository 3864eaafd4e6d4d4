package handlers

import (
	"net/http"

	"github.com/alertdeck/alertdeck/internal/api"
)

// version is reported by the health endpoint.
const version = "1.0.0"

// SetupRoutes wires all HTTP routes onto the mux.
func SetupRoutes(mux *http.ServeMux, auth *AuthHandler, alerts *AlertsHandler, settings *SettingsHandler) {
	mux.HandleFunc("/health", handleHealth)
	auth.SetupRoutes(mux)
	alerts.SetupRoutes(mux)
	settings.SetupRoutes(mux)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	})
}
