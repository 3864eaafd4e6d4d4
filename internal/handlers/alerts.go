package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/alertdeck/alertdeck/internal/alerts"
	"github.com/alertdeck/alertdeck/internal/api"
	"github.com/alertdeck/alertdeck/internal/device"
	"github.com/alertdeck/alertdeck/internal/engine"
)

// AlertView is the engine surface the handlers read from and steer.
type AlertView interface {
	View() engine.View
	Telemetry(category string) []json.RawMessage
	TelemetryCategories() []string
	Pause()
	Resume()
}

// DeviceGateway is the slice of the device client the handlers proxy through:
// acknowledge/clear mutations plus the device-truth readbacks.
type DeviceGateway interface {
	Acknowledge(ctx context.Context, identity alerts.IdentityPayload) error
	Clear(ctx context.Context, identity alerts.IdentityPayload) error
	ActiveAlerts(ctx context.Context) ([]alerts.Record, error)
	Summary(ctx context.Context) (*device.SummaryResponse, error)
}

// AlertsHandler serves the operator console's alert endpoints.
type AlertsHandler struct {
	engine AlertView
	device DeviceGateway
}

// NewAlertsHandler creates the alerts handler.
func NewAlertsHandler(engine AlertView, device DeviceGateway) *AlertsHandler {
	return &AlertsHandler{engine: engine, device: device}
}

// AlertListResponse is the body of GET /api/alerts.
type AlertListResponse struct {
	Alerts       []alerts.Record `json:"alerts"`
	Count        int             `json:"count"`
	Paused       bool            `json:"paused"`
	PendingCount int             `json:"pendingCount"`
	Highlights   []string        `json:"highlights"`
	Connected    bool            `json:"connected"`
	SnapshotAt   int64           `json:"snapshotAt,omitempty"`
	ReconciledAt int64           `json:"reconciledAt,omitempty"`
}

// PauseStateResponse is the body of the pause and resume endpoints.
type PauseStateResponse struct {
	Paused       bool `json:"paused"`
	PendingCount int  `json:"pendingCount"`
}

// SetupRoutes wires the alert routes.
func (h *AlertsHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/alerts", h.handleList)
	mux.HandleFunc("/api/alerts/summary", h.handleSummary)
	mux.HandleFunc("/api/alerts/histogram", h.handleHistogram)
	mux.HandleFunc("/api/alerts/pause", h.handlePause)
	mux.HandleFunc("/api/alerts/resume", h.handleResume)
	mux.HandleFunc("/api/alerts/acknowledge", h.handleAcknowledge)
	mux.HandleFunc("/api/alerts/clear", h.handleClear)
	mux.HandleFunc("/api/device/active", h.handleDeviceActive)
	mux.HandleFunc("/api/device/summary", h.handleDeviceSummary)
	mux.HandleFunc("/api/telemetry", h.handleTelemetry)
}

func (h *AlertsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	view := h.engine.View()
	filtered := api.ParseAlertFilter(r.URL.Query()).Apply(view.Alerts)

	resp := AlertListResponse{
		Alerts:       filtered,
		Count:        len(filtered),
		Paused:       view.Paused,
		PendingCount: view.PendingCount,
		Highlights:   view.Highlights,
		Connected:    view.Connected,
	}
	if resp.Alerts == nil {
		resp.Alerts = []alerts.Record{}
	}
	if resp.Highlights == nil {
		resp.Highlights = []string{}
	}
	if !view.SnapshotAt.IsZero() {
		resp.SnapshotAt = view.SnapshotAt.Unix()
	}
	if !view.ReconciledAt.IsZero() {
		resp.ReconciledAt = view.ReconciledAt.Unix()
	}
	api.RespondJSON(w, http.StatusOK, resp)
}

func (h *AlertsHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	view := h.engine.View()
	filtered := api.ParseAlertFilter(r.URL.Query()).Apply(view.Alerts)
	api.RespondJSON(w, http.StatusOK, alerts.Summarize(filtered))
}

func (h *AlertsHandler) handleHistogram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	view := h.engine.View()
	filtered := api.ParseAlertFilter(r.URL.Query()).Apply(view.Alerts)
	buckets := alerts.Bucketize(filtered, time.Now())
	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"buckets":     buckets,
		"bucketCount": alerts.BucketCount,
		"widthSec":    int64(alerts.BucketWidth.Seconds()),
	})
}

func (h *AlertsHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.engine.Pause()
	view := h.engine.View()
	api.RespondJSON(w, http.StatusOK, PauseStateResponse{
		Paused:       view.Paused,
		PendingCount: view.PendingCount,
	})
}

func (h *AlertsHandler) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.engine.Resume()
	view := h.engine.View()
	api.RespondJSON(w, http.StatusOK, PauseStateResponse{
		Paused:       view.Paused,
		PendingCount: view.PendingCount,
	})
}

func (h *AlertsHandler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	h.handleMutation(w, r, "acknowledge", h.device.Acknowledge)
}

func (h *AlertsHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.handleMutation(w, r, "clear", h.device.Clear)
}

// handleMutation forwards an alert state change to the device. The console
// never mutates its own view; the change comes back through the push channel
// or the next snapshot.
func (h *AlertsHandler) handleMutation(w http.ResponseWriter, r *http.Request, action string, mutate func(context.Context, alerts.IdentityPayload) error) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var identity alerts.IdentityPayload
	if err := api.DecodeJSON(r, &identity); err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if identity.SourceID == "" || identity.AlarmName == "" {
		api.RespondError(w, http.StatusBadRequest, "sourceId and alarmName are required")
		return
	}

	if err := mutate(r.Context(), identity); err != nil {
		log.Printf("AlertsHandler: %s failed for %s/%s: %v", action, identity.SourceID, identity.AlarmName, err)
		api.RespondRetryableError(w, http.StatusBadGateway, "Device did not accept the "+action+" request")
		return
	}
	api.RespondNoContent(w)
}

// handleDeviceActive proxies the device's own active-alert list, the raw
// upstream truth next to the reconciled view.
func (h *AlertsHandler) handleDeviceActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records, err := h.device.ActiveAlerts(r.Context())
	if err != nil {
		log.Printf("AlertsHandler: device active-alert fetch failed: %v", err)
		api.RespondRetryableError(w, http.StatusBadGateway, "Device did not return its active alerts")
		return
	}
	if records == nil {
		records = []alerts.Record{}
	}
	api.RespondJSON(w, http.StatusOK, AlertListResponse{Alerts: records, Count: len(records)})
}

// handleDeviceSummary proxies the device's own aggregate counts.
func (h *AlertsHandler) handleDeviceSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	summary, err := h.device.Summary(r.Context())
	if err != nil {
		log.Printf("AlertsHandler: device summary fetch failed: %v", err)
		api.RespondRetryableError(w, http.StatusBadGateway, "Device did not return its summary")
		return
	}
	api.RespondJSON(w, http.StatusOK, summary)
}

func (h *AlertsHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		categories := h.engine.TelemetryCategories()
		if categories == nil {
			categories = []string{}
		}
		api.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"categories": categories,
		})
		return
	}

	records := h.engine.Telemetry(category)
	if records == nil {
		records = []json.RawMessage{}
	}
	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"records":  records,
		"count":    len(records),
	})
}
