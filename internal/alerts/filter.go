package alerts

import "strings"

// Filter selects a subset of the canonical view for display. All populated
// criteria are intersected; an empty criterion matches everything.
type Filter struct {
	Severities []Severity
	States     []State
	Sources    []string
	Query      string // case-insensitive substring over name, detail, and source
}

// Empty reports whether the filter matches every record.
func (f Filter) Empty() bool {
	return len(f.Severities) == 0 && len(f.States) == 0 &&
		len(f.Sources) == 0 && strings.TrimSpace(f.Query) == ""
}

// Matches reports whether a single record passes the filter.
func (f Filter) Matches(rec Record) bool {
	if len(f.Severities) > 0 && !containsSeverity(f.Severities, rec.Severity) {
		return false
	}
	if len(f.States) > 0 && !containsState(f.States, rec.State) {
		return false
	}
	if len(f.Sources) > 0 && !containsFold(f.Sources, rec.SourceID) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(rec.AlarmName), q) &&
			!strings.Contains(strings.ToLower(rec.DetailMessage), q) &&
			!strings.Contains(strings.ToLower(rec.SourceID), q) {
			return false
		}
	}
	return true
}

// Apply returns the records passing the filter, preserving input order.
func (f Filter) Apply(records []Record) []Record {
	if f.Empty() {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func containsSeverity(list []Severity, s Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsState(list []State, s State) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Summary aggregates the canonical view by state and severity for the
// operator dashboard header.
type Summary struct {
	Total      int                 `json:"total"`
	ByState    map[State]int       `json:"byState"`
	BySeverity [SeverityLevels]int `json:"bySeverity"`
}

// Summarize computes counts by state and severity over a record list.
func Summarize(records []Record) Summary {
	sum := Summary{ByState: make(map[State]int)}
	for _, rec := range records {
		sum.Total++
		sum.ByState[rec.State]++
		if rec.Severity.Valid() {
			sum.BySeverity[rec.Severity]++
		}
	}
	return sum
}
