package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alertdeck/alertdeck/internal/stream"
	"github.com/alertdeck/alertdeck/internal/telemetry"
)

// topicsFile is the YAML shape of a topic definitions file:
//
//	topics:
//	  - name: alerts
//	    path: /ws/alerts
type topicsFile struct {
	Topics []stream.Topic `yaml:"topics"`
}

// DefaultTopics are the device's standard push channels. Topic names double
// as the telemetry buffer categories for non-alert channels.
func DefaultTopics() []stream.Topic {
	return []stream.Topic{
		{Name: telemetry.CategoryAlerts, Path: "/ws/alerts"},
		{Name: telemetry.CategoryJobState, Path: "/ws/job-state"},
		{Name: "telemetry", Path: "/ws/telemetry"},
	}
}

// LoadTopics reads topic definitions from a YAML file. An empty path returns
// the defaults.
func LoadTopics(path string) ([]stream.Topic, error) {
	if path == "" {
		return DefaultTopics(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	var file topicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse topics file: %w", err)
	}
	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}
	for i, topic := range file.Topics {
		if topic.Name == "" || topic.Path == "" {
			return nil, fmt.Errorf("topics file %s: entry %d missing name or path", path, i)
		}
	}
	return file.Topics, nil
}
