package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/alertdeck/alertdeck/internal/alerts"
)

// maxBodySize caps request bodies at 1 MB; nothing the console accepts is
// bigger.
const maxBodySize = 1 << 20

// DecodeJSON decodes a request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// ParseAlertFilter builds an alert filter from list query parameters:
// severity, state, and source accept comma-separated values; q is the
// free-text term. All criteria intersect.
func ParseAlertFilter(query url.Values) alerts.Filter {
	var f alerts.Filter

	for _, raw := range splitParam(query.Get("severity")) {
		f.Severities = append(f.Severities, alerts.ParseSeverity(raw))
	}
	for _, raw := range splitParam(query.Get("state")) {
		f.States = append(f.States, alerts.ParseState(raw))
	}
	f.Sources = splitParam(query.Get("source"))
	f.Query = query.Get("q")
	return f
}

func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
