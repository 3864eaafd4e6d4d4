package alerts

import (
	"encoding/json"
	"testing"
)

func TestIdentityKey_ProviderKeyWins(t *testing.T) {
	rec := Record{
		SourceID:    "gas-sensor-2",
		AlarmName:   "pressure_high",
		ProviderKey: "prov-123",
	}
	if got := rec.IdentityKey(); got != "prov-123" {
		t.Errorf("expected provider key, got %q", got)
	}
}

func TestIdentityKey_SynthesizedFallback(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "all fields present",
			rec:  Record{SourceID: "s1", AlarmName: "overtemp", DetailMessage: "zone 3"},
			want: "s1::overtemp::zone 3",
		},
		{
			name: "empty detail message",
			rec:  Record{SourceID: "s1", AlarmName: "overtemp"},
			want: "s1::overtemp::",
		},
		{
			name: "all empty",
			rec:  Record{},
			want: "::::",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IdentityKey(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIdentityKey_Deterministic(t *testing.T) {
	a := Record{SourceID: "s1", AlarmName: "a", DetailMessage: "d"}
	b := Record{SourceID: "s1", AlarmName: "a", DetailMessage: "d", LastSeenAt: 99}
	if a.IdentityKey() != b.IdentityKey() {
		t.Error("records describing the same condition must share a key")
	}

	c := Record{SourceID: "s1", AlarmName: "a", DetailMessage: "other"}
	if a.IdentityKey() == c.IdentityKey() {
		t.Error("records with different details must not collide")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"CRITICAL", SeverityCritical},
		{"critical", SeverityCritical},
		{"HIGH", SeverityHigh},
		{"Warning", SeverityWarning},
		{"INFO", SeverityInfo},
		{"informational", SeverityInfo},
		{"0", SeverityCritical},
		{"3", SeverityInfo},
		{"bogus", SeverityWarning},
		{"", SeverityWarning},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSeverity(tt.input); got != tt.want {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeverity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Severity
		wantErr bool
	}{
		{name: "ordinal", payload: `{"severity": 0}`, want: SeverityCritical},
		{name: "alias", payload: `{"severity": "HIGH"}`, want: SeverityHigh},
		{name: "out of range", payload: `{"severity": 7}`, wantErr: true},
		{name: "wrong type", payload: `{"severity": [1]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			err := json.Unmarshal([]byte(tt.payload), &rec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Severity != tt.want {
				t.Errorf("expected severity %v, got %v", tt.want, rec.Severity)
			}
		})
	}
}

func TestSeverity_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Record{Severity: SeverityHigh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["severity"] != float64(1) {
		t.Errorf("expected numeric severity 1, got %v", decoded["severity"])
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		input string
		want  State
	}{
		{"active", StateActive},
		{"firing", StateActive},
		{"Acknowledged", StateAcknowledged},
		{"cleared", StateCleared},
		{"resolved", StateCleared},
		{"unknown", StateActive},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseState(tt.input); got != tt.want {
				t.Errorf("ParseState(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
