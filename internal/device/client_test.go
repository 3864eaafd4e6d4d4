package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alertdeck/alertdeck/internal/alerts"
)

func TestClient_ListAlerts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"alerts": [
				{"sourceId": "pump-1", "alarmName": "pressure_high", "severity": 0, "state": "active", "lastSeenAt": 100},
				{"sourceId": "valve-2", "alarmName": "flow_low", "severity": "WARNING", "state": "acknowledged", "lastSeenAt": 90}
			],
			"count": 2
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	records, err := client.ListAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Severity != alerts.SeverityCritical {
		t.Errorf("expected numeric severity decoded, got %v", records[0].Severity)
	}
	if records[1].Severity != alerts.SeverityWarning {
		t.Errorf("expected alias severity decoded, got %v", records[1].Severity)
	}
}

func TestClient_ListAlertsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.ListAlerts(context.Background()); err == nil {
		t.Fatal("expected error on 500, got nil")
	}
}

func TestClient_AcknowledgeSendsRawIdentity(t *testing.T) {
	var got alerts.IdentityPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts/acknowledge" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	identity := alerts.IdentityPayload{
		SourceID:      "pump-1",
		AlarmName:     "pressure_high",
		DetailMessage: "inlet pressure above threshold",
	}
	client := NewClient(server.URL)
	if err := client.Acknowledge(context.Background(), identity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != identity {
		t.Errorf("expected identity payload %+v, got %+v", identity, got)
	}
}

func TestClient_ClearFailureSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "device busy", http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Clear(context.Background(), alerts.IdentityPayload{SourceID: "s1"})
	if err == nil {
		t.Fatal("expected error surfaced for failed mutation")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	if _, err := client.ListAlerts(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
