package handlers

import (
	"log"
	"net/http"

	"github.com/alertdeck/alertdeck/internal/api"
	"github.com/alertdeck/alertdeck/internal/database"
)

// NotifierReloader is notified after Slack settings change so the posting
// client picks up the new token and channel.
type NotifierReloader interface {
	Reload() error
}

// SettingsHandler serves the persisted settings endpoints.
type SettingsHandler struct {
	notifier NotifierReloader
}

// NewSettingsHandler creates the settings handler. notifier may be nil.
func NewSettingsHandler(notifier NotifierReloader) *SettingsHandler {
	return &SettingsHandler{notifier: notifier}
}

// DeviceSettingsRequest is the body of PUT /api/settings/device.
type DeviceSettingsRequest struct {
	BaseURL             string `json:"base_url"`
	WSURL               string `json:"ws_url"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
}

// SlackSettingsRequest is the body of PUT /api/settings/slack.
type SlackSettingsRequest struct {
	BotToken    string `json:"bot_token"`
	Channel     string `json:"channel"`
	MinSeverity int    `json:"min_severity"`
	Enabled     bool   `json:"enabled"`
}

// SlackSettingsResponse omits the bot token; the UI only needs to know one is
// set.
type SlackSettingsResponse struct {
	TokenSet    bool   `json:"token_set"`
	Channel     string `json:"channel"`
	MinSeverity int    `json:"min_severity"`
	Enabled     bool   `json:"enabled"`
}

// SetupRoutes wires the settings routes.
func (h *SettingsHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/settings/device", h.handleDevice)
	mux.HandleFunc("/api/settings/slack", h.handleSlack)
}

func (h *SettingsHandler) handleDevice(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := database.GetDeviceSettings()
		if err != nil {
			log.Printf("SettingsHandler: load device settings: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Could not load device settings")
			return
		}
		api.RespondJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var req DeviceSettingsRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.PollIntervalSeconds < 0 {
			api.RespondError(w, http.StatusBadRequest, "poll_interval_seconds must not be negative")
			return
		}

		settings, err := database.GetDeviceSettings()
		if err != nil {
			log.Printf("SettingsHandler: load device settings: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Could not load device settings")
			return
		}
		settings.BaseURL = req.BaseURL
		settings.WSURL = req.WSURL
		settings.PollIntervalSeconds = req.PollIntervalSeconds
		if err := database.UpdateDeviceSettings(settings); err != nil {
			log.Printf("SettingsHandler: save device settings: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Could not save device settings")
			return
		}
		log.Printf("SettingsHandler: device settings updated, restart required to apply endpoints")
		api.RespondJSON(w, http.StatusOK, settings)

	default:
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SettingsHandler) handleSlack(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := database.GetSlackSettings()
		if err != nil {
			log.Printf("SettingsHandler: load slack settings: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Could not load Slack settings")
			return
		}
		api.RespondJSON(w, http.StatusOK, SlackSettingsResponse{
			TokenSet:    settings.BotToken != "",
			Channel:     settings.Channel,
			MinSeverity: settings.MinSeverity,
			Enabled:     settings.Enabled,
		})

	case http.MethodPut:
		var req SlackSettingsRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MinSeverity < 0 || req.MinSeverity > 3 {
			api.RespondError(w, http.StatusBadRequest, "min_severity must be between 0 and 3")
			return
		}

		settings, err := database.GetSlackSettings()
		if err != nil {
			log.Printf("SettingsHandler: load slack settings: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Could not load Slack settings")
			return
		}
		// An empty token in the request keeps the stored one so the UI can
		// update the channel without re-entering the secret.
		if req.BotToken != "" {
			settings.BotToken = req.BotToken
		}
		settings.Channel = req.Channel
		settings.MinSeverity = req.MinSeverity
		settings.Enabled = req.Enabled
		if err := database.UpdateSlackSettings(settings); err != nil {
			log.Printf("SettingsHandler: save slack settings: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Could not save Slack settings")
			return
		}

		if h.notifier != nil {
			if err := h.notifier.Reload(); err != nil {
				log.Printf("SettingsHandler: notifier reload failed: %v", err)
			}
		}
		api.RespondJSON(w, http.StatusOK, SlackSettingsResponse{
			TokenSet:    settings.BotToken != "",
			Channel:     settings.Channel,
			MinSeverity: settings.MinSeverity,
			Enabled:     settings.Enabled,
		})

	default:
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
