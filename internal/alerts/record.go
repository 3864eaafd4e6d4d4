package alerts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Severity is the normalized alert severity. Lower ordinal means more severe.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityWarning
	SeverityInfo

	// SeverityLevels is the number of distinct severities.
	SeverityLevels = 4
)

// String returns the canonical alias for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return "unknown"
}

// Valid reports whether the severity is one of the four defined levels.
func (s Severity) Valid() bool {
	return s >= SeverityCritical && s <= SeverityInfo
}

// ParseSeverity normalizes a severity string to a Severity.
// Accepts the canonical aliases, common variants, and the ordinal as a string.
// Unknown values default to warning.
func ParseSeverity(value string) Severity {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical", "crit", "0":
		return SeverityCritical
	case "high", "error", "1":
		return SeverityHigh
	case "warning", "warn", "2":
		return SeverityWarning
	case "info", "informational", "3":
		return SeverityInfo
	}
	return SeverityWarning
}

// UnmarshalJSON accepts either the numeric ordinal or a string alias,
// since the device emits both shapes depending on firmware version.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var num int
	if err := json.Unmarshal(data, &num); err == nil {
		sev := Severity(num)
		if !sev.Valid() {
			return fmt.Errorf("severity ordinal out of range: %d", num)
		}
		*s = sev
		return nil
	}

	var alias string
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("severity must be a number or string: %s", string(data))
	}
	*s = ParseSeverity(alias)
	return nil
}

// MarshalJSON emits the numeric ordinal, matching the device's snapshot format.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

// State represents the lifecycle state of an alert.
type State string

const (
	StateActive       State = "active"
	StateAcknowledged State = "acknowledged"
	StateCleared      State = "cleared"
)

// ParseState normalizes a state string. Unknown values default to active.
func ParseState(value string) State {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "active", "firing":
		return StateActive
	case "acknowledged", "acked":
		return StateAcknowledged
	case "cleared", "resolved":
		return StateCleared
	}
	return StateActive
}

// identitySeparator joins the fallback identity fields. The device never
// emits "::" inside source IDs or alarm names.
const identitySeparator = "::"

// Record is the canonical alert unit produced by both the push channel and
// the snapshot endpoint.
type Record struct {
	SourceID        string   `json:"sourceId"`
	AlarmName       string   `json:"alarmName"`
	Severity        Severity `json:"severity"`
	State           State    `json:"state"`
	FirstSeenAt     int64    `json:"firstSeenAt"`
	LastSeenAt      int64    `json:"lastSeenAt"`
	OccurrenceCount int      `json:"occurrenceCount"`
	PublishedCount  int      `json:"publishedCount"`
	DetailMessage   string   `json:"detailMessage"`

	// ProviderKey is the device-supplied stable identity key, when present.
	ProviderKey string `json:"identityKey,omitempty"`
}

// IdentityKey derives the key used to decide whether two records describe the
// same condition. The provider-supplied key wins when present; otherwise the
// key is synthesized from the source, alarm name, and detail message. The
// server identifies alerts by the same three raw fields, so acknowledge and
// clear requests carry them instead of the derived key.
func (r Record) IdentityKey() string {
	if r.ProviderKey != "" {
		return r.ProviderKey
	}
	return r.SourceID + identitySeparator + r.AlarmName + identitySeparator + r.DetailMessage
}

// IdentityPayload is the raw three-field identity the device API accepts for
// acknowledge and clear mutations.
type IdentityPayload struct {
	SourceID      string `json:"sourceId"`
	AlarmName     string `json:"alarmName"`
	DetailMessage string `json:"detailMessage"`
}

// Identity returns the mutation payload for the record.
func (r Record) Identity() IdentityPayload {
	return IdentityPayload{
		SourceID:      r.SourceID,
		AlarmName:     r.AlarmName,
		DetailMessage: r.DetailMessage,
	}
}
