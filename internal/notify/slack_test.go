package notify

import (
	"strings"
	"testing"

	"github.com/alertdeck/alertdeck/internal/alerts"
)

func TestFormatAlertMessage(t *testing.T) {
	tests := []struct {
		name string
		rec  alerts.Record
		want []string
	}{
		{
			name: "critical with detail",
			rec: alerts.Record{
				SourceID:        "pump-1",
				AlarmName:       "pressure_high",
				Severity:        alerts.SeverityCritical,
				DetailMessage:   "inlet pressure above threshold",
				OccurrenceCount: 1,
			},
			want: []string{":red_circle:", "*pressure_high*", "`pump-1`", "inlet pressure above threshold"},
		},
		{
			name: "repeat occurrences flagged",
			rec: alerts.Record{
				SourceID:        "valve-2",
				AlarmName:       "flow_low",
				Severity:        alerts.SeverityHigh,
				OccurrenceCount: 4,
			},
			want: []string{":large_orange_circle:", "(x4)"},
		},
		{
			name: "no detail message",
			rec: alerts.Record{
				SourceID:  "s1",
				AlarmName: "a",
				Severity:  alerts.SeverityWarning,
			},
			want: []string{":large_yellow_circle:", "*a*"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAlertMessage(tt.rec)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Errorf("message %q missing %q", got, fragment)
				}
			}
		})
	}
}

func TestNotifyNewAlerts_InactiveIsNoop(t *testing.T) {
	// An unconfigured notifier must swallow notifications without touching
	// the nil client.
	n := &SlackNotifier{}
	n.NotifyNewAlerts([]alerts.Record{{
		SourceID:  "s1",
		AlarmName: "a",
		Severity:  alerts.SeverityCritical,
		State:     alerts.StateActive,
	}})
}
