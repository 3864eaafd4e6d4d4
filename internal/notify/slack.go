// Package notify posts newly-detected alerts to Slack.
package notify

import (
	"fmt"
	"log"
	"sync"

	"github.com/slack-go/slack"

	"github.com/alertdeck/alertdeck/internal/alerts"
	"github.com/alertdeck/alertdeck/internal/database"
	"github.com/alertdeck/alertdeck/internal/observability/metrics"
)

// SlackNotifier posts alerts newly admitted to the canonical set to a
// configured channel. Settings come from the database and can be reloaded
// without a restart.
type SlackNotifier struct {
	mu          sync.RWMutex
	client      *slack.Client
	channel     string
	minSeverity alerts.Severity
	active      bool
}

// NewSlackNotifier creates a notifier and loads its initial settings.
func NewSlackNotifier() *SlackNotifier {
	n := &SlackNotifier{}
	if err := n.Reload(); err != nil {
		log.Printf("SlackNotifier: could not load settings: %v", err)
	}
	return n
}

// Reload re-reads Slack settings from the database and swaps the client.
func (n *SlackNotifier) Reload() error {
	settings, err := database.GetSlackSettings()
	if err != nil {
		return fmt.Errorf("load slack settings: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !settings.IsActive() {
		n.active = false
		n.client = nil
		log.Printf("SlackNotifier: notifications disabled")
		return nil
	}

	n.client = slack.New(settings.BotToken)
	n.channel = settings.Channel
	n.minSeverity = alerts.Severity(settings.MinSeverity)
	n.active = true
	log.Printf("SlackNotifier: notifications active for channel %s", settings.Channel)
	return nil
}

// NotifyNewAlerts implements engine.Notifier. Posting happens on a separate
// goroutine; the engine's reconcile path must never wait on Slack.
func (n *SlackNotifier) NotifyNewAlerts(records []alerts.Record) {
	n.mu.RLock()
	active := n.active
	client := n.client
	channel := n.channel
	minSeverity := n.minSeverity
	n.mu.RUnlock()

	if !active {
		return
	}

	var notable []alerts.Record
	for _, rec := range records {
		if rec.Severity <= minSeverity && rec.State == alerts.StateActive {
			notable = append(notable, rec)
		}
	}
	if len(notable) == 0 {
		return
	}

	go func() {
		for _, rec := range notable {
			_, _, err := client.PostMessage(channel,
				slack.MsgOptionText(FormatAlertMessage(rec), false))
			if err != nil {
				metrics.NotificationsSent.WithLabelValues("error").Inc()
				log.Printf("SlackNotifier: post failed for %s: %v", rec.IdentityKey(), err)
				continue
			}
			metrics.NotificationsSent.WithLabelValues("ok").Inc()
		}
	}()
}

// FormatAlertMessage renders one alert as a Slack message line.
func FormatAlertMessage(rec alerts.Record) string {
	msg := fmt.Sprintf("%s *%s* on `%s`", severityEmoji(rec.Severity), rec.AlarmName, rec.SourceID)
	if rec.DetailMessage != "" {
		msg += ": " + rec.DetailMessage
	}
	if rec.OccurrenceCount > 1 {
		msg += fmt.Sprintf(" (x%d)", rec.OccurrenceCount)
	}
	return msg
}

func severityEmoji(severity alerts.Severity) string {
	switch severity {
	case alerts.SeverityCritical:
		return ":red_circle:"
	case alerts.SeverityHigh:
		return ":large_orange_circle:"
	case alerts.SeverityWarning:
		return ":large_yellow_circle:"
	case alerts.SeverityInfo:
		return ":large_blue_circle:"
	}
	return ":white_circle:"
}
