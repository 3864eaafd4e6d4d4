package database

import "testing"

func TestSlackSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings SlackSettings
		want     bool
	}{
		{"empty", SlackSettings{}, false},
		{"token only", SlackSettings{BotToken: "xoxb-1"}, false},
		{"channel only", SlackSettings{Channel: "#alerts"}, false},
		{"both", SlackSettings{BotToken: "xoxb-1", Channel: "#alerts"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlackSettings_IsActive(t *testing.T) {
	configured := SlackSettings{BotToken: "xoxb-1", Channel: "#alerts"}

	if configured.IsActive() {
		t.Error("configured but disabled settings must not be active")
	}

	configured.Enabled = true
	if !configured.IsActive() {
		t.Error("enabled and configured settings must be active")
	}

	unconfigured := SlackSettings{Enabled: true}
	if unconfigured.IsActive() {
		t.Error("enabled but unconfigured settings must not be active")
	}
}
