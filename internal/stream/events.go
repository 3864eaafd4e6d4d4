package stream

import (
	"encoding/json"
	"fmt"

	"github.com/alertdeck/alertdeck/internal/alerts"
)

// Event names the engine specifically recognizes. Connections receive every
// event on their topic; anything else decodes to Unrecognized and is dropped
// by the dispatcher after logging.
const (
	EventAlertProcessed = "alert_processed"
	EventDataUpdate     = "data_update"
)

// Envelope is the outer frame of every push message: an event name plus an
// opaque payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event is the closed set of decoded push event shapes. Exactly one of the
// concrete types below is produced per frame; control flow past the decode
// boundary never inspects untyped fields.
type Event interface {
	eventName() string
}

// AlertProcessed carries a full alert payload from the alerts topic.
type AlertProcessed struct {
	Record alerts.Record
}

func (AlertProcessed) eventName() string { return EventAlertProcessed }

// DataUpdate is the generic telemetry envelope. Object discriminates the
// telemetry category; Payload is kept raw for the per-category buffers.
type DataUpdate struct {
	Object  string
	Payload json.RawMessage
}

func (DataUpdate) eventName() string { return EventDataUpdate }

// Unrecognized marks a frame whose event name is not in the known table.
type Unrecognized struct {
	Name string
}

func (u Unrecognized) eventName() string { return u.Name }

// dataUpdateBody is the inner shape of a data_update frame.
type dataUpdateBody struct {
	Object string `json:"object"`
}

// DecodeEvent parses a raw frame against the known event shapes. Malformed
// payloads for a recognized event name are an error; unknown event names are
// not, they yield Unrecognized so the dispatcher can drop them quietly.
func DecodeEvent(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("malformed event frame: %w", err)
	}

	switch env.Event {
	case EventAlertProcessed:
		var rec alerts.Record
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", EventAlertProcessed, err)
		}
		return AlertProcessed{Record: rec}, nil

	case EventDataUpdate:
		var body dataUpdateBody
		if err := json.Unmarshal(env.Data, &body); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", EventDataUpdate, err)
		}
		if body.Object == "" {
			return nil, fmt.Errorf("%s payload missing object discriminator", EventDataUpdate)
		}
		return DataUpdate{Object: body.Object, Payload: env.Data}, nil

	default:
		return Unrecognized{Name: env.Event}, nil
	}
}
