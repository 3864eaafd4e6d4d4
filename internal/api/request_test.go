package api

import (
	"net/url"
	"testing"

	"github.com/alertdeck/alertdeck/internal/alerts"
)

func TestParseAlertFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, f alerts.Filter)
	}{
		{
			name:  "empty",
			query: "",
			check: func(t *testing.T, f alerts.Filter) {
				if !f.Empty() {
					t.Errorf("expected empty filter, got %+v", f)
				}
			},
		},
		{
			name:  "single severity",
			query: "severity=critical",
			check: func(t *testing.T, f alerts.Filter) {
				if len(f.Severities) != 1 || f.Severities[0] != alerts.SeverityCritical {
					t.Errorf("unexpected severities: %v", f.Severities)
				}
			},
		},
		{
			name:  "comma-separated severities",
			query: "severity=critical,high",
			check: func(t *testing.T, f alerts.Filter) {
				if len(f.Severities) != 2 {
					t.Fatalf("expected 2 severities, got %v", f.Severities)
				}
			},
		},
		{
			name:  "states and sources",
			query: "state=active,acknowledged&source=pump-1",
			check: func(t *testing.T, f alerts.Filter) {
				if len(f.States) != 2 {
					t.Errorf("expected 2 states, got %v", f.States)
				}
				if len(f.Sources) != 1 || f.Sources[0] != "pump-1" {
					t.Errorf("unexpected sources: %v", f.Sources)
				}
			},
		},
		{
			name:  "free text",
			query: "q=pressure",
			check: func(t *testing.T, f alerts.Filter) {
				if f.Query != "pressure" {
					t.Errorf("unexpected query: %q", f.Query)
				}
			},
		},
		{
			name:  "blank entries trimmed",
			query: "source=pump-1,%20,valve-2",
			check: func(t *testing.T, f alerts.Filter) {
				if len(f.Sources) != 2 {
					t.Errorf("expected blanks dropped, got %v", f.Sources)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}
			tt.check(t, ParseAlertFilter(values))
		})
	}
}
