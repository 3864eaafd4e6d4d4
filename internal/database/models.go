package database

import "time"

// DeviceSettings stores operator overrides for the monitored device's
// endpoints. Empty fields fall back to the environment configuration.
type DeviceSettings struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	BaseURL             string    `gorm:"type:varchar(255)" json:"base_url"`
	WSURL               string    `gorm:"type:varchar(255)" json:"ws_url"`
	PollIntervalSeconds int       `gorm:"default:0" json:"poll_interval_seconds"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SlackSettings stores the alert notification configuration.
type SlackSettings struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BotToken    string    `gorm:"type:text" json:"bot_token"`
	Channel     string    `gorm:"type:varchar(255)" json:"channel"`
	MinSeverity int       `gorm:"default:1" json:"min_severity"` // notify at this severity or worse
	Enabled     bool      `gorm:"default:false" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsConfigured returns true if the required Slack fields are set.
func (s *SlackSettings) IsConfigured() bool {
	return s.BotToken != "" && s.Channel != ""
}

// IsActive returns true if Slack notifications are enabled and configured.
func (s *SlackSettings) IsActive() bool {
	return s.Enabled && s.IsConfigured()
}

// GetDeviceSettings returns the device settings row.
func GetDeviceSettings() (*DeviceSettings, error) {
	var settings DeviceSettings
	if err := DB.First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateDeviceSettings persists device settings changes.
func UpdateDeviceSettings(settings *DeviceSettings) error {
	return DB.Save(settings).Error
}

// GetSlackSettings returns the Slack settings row.
func GetSlackSettings() (*SlackSettings, error) {
	var settings SlackSettings
	if err := DB.First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSlackSettings persists Slack settings changes.
func UpdateSlackSettings(settings *SlackSettings) error {
	return DB.Save(settings).Error
}
