// Package stream owns the device's websocket push channels: one persistent
// subscription per topic, wildcard event receipt, tagged-union decoding at
// the boundary, and topic-local reconnection.
package stream

import (
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alertdeck/alertdeck/internal/observability/metrics"
)

// Topic describes one logical subscription channel.
type Topic struct {
	// Name is the logical topic name (e.g. "alerts", "job-state").
	Name string `yaml:"name"`

	// Path is the websocket path on the device, joined onto the base URL.
	Path string `yaml:"path"`
}

// Handler receives every recognized event decoded on a topic.
type Handler func(Event)

// Options tunes the multiplexer. Zero values fall back to defaults.
type Options struct {
	// ReconnectAttempts is the per-topic reconnection ceiling.
	ReconnectAttempts int

	// ReconnectDelay is the fixed delay between attempts.
	ReconnectDelay time.Duration

	// LivenessTopic designates the one topic whose connect state drives
	// the coarse "device connected" flag. Defaults to "alerts". This is a
	// deliberate simplification, not a per-topic health model.
	LivenessTopic string

	// OnConnected, when set, is invoked with the coarse liveness flag on
	// every change of the designated topic's state.
	OnConnected func(bool)
}

// Multiplexer routes decoded push events from N topic connections to the
// registered handlers. Unrecognized events are logged and dropped; malformed
// payloads likewise. Individual topic failures never propagate beyond the
// liveness flag.
type Multiplexer struct {
	baseURL string
	opts    Options

	mu       sync.RWMutex
	handlers map[string][]Handler
	conns    map[string]*topicConn
	running  bool
	live     bool
}

// NewMultiplexer creates a multiplexer for a device websocket base URL
// (e.g. "ws://device:9001").
func NewMultiplexer(baseURL string, opts Options) *Multiplexer {
	if opts.ReconnectAttempts <= 0 {
		opts.ReconnectAttempts = DefaultReconnectAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.LivenessTopic == "" {
		opts.LivenessTopic = "alerts"
	}
	return &Multiplexer{
		baseURL:  strings.TrimRight(baseURL, "/"),
		opts:     opts,
		handlers: make(map[string][]Handler),
		conns:    make(map[string]*topicConn),
	}
}

// OnEvent registers a handler for a topic. Handlers registered after
// ConnectAll still receive events; registration is cheap and lock-guarded.
func (m *Multiplexer) OnEvent(topic string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = append(m.handlers[topic], handler)
}

// ConnectAll establishes one persistent connection per topic. Calling it
// while already connected is a no-op.
func (m *Multiplexer) ConnectAll(topics []Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	for _, topic := range topics {
		wsURL, err := m.topicURL(topic)
		if err != nil {
			return err
		}
		conn := newTopicConn(topic.Name, wsURL,
			m.opts.ReconnectAttempts, m.opts.ReconnectDelay,
			m.dispatch, m.stateChanged)
		m.conns[topic.Name] = conn
		go conn.run()
	}

	m.running = true
	log.Printf("StreamMux: connecting %d topics", len(topics))
	return nil
}

// DisconnectAll tears down every topic connection and cancels all pending
// reconnection timers.
func (m *Multiplexer) DisconnectAll() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	conns := m.conns
	m.conns = make(map[string]*topicConn)
	m.running = false
	m.mu.Unlock()

	for _, conn := range conns {
		conn.shutdown()
	}
	log.Printf("StreamMux: all topics disconnected")
}

// Connected reports the coarse liveness flag derived from the designated
// topic.
func (m *Multiplexer) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live
}

// dispatch decodes a raw frame and fans it out to the topic's handlers.
func (m *Multiplexer) dispatch(topic string, frame []byte) {
	event, err := DecodeEvent(frame)
	if err != nil {
		log.Printf("StreamMux: dropping malformed event on %s: %v", topic, err)
		metrics.EventsDropped.WithLabelValues(topic).Inc()
		return
	}
	if unrec, ok := event.(Unrecognized); ok {
		log.Printf("StreamMux: dropping unrecognized event %q on %s", unrec.Name, topic)
		metrics.EventsDropped.WithLabelValues(topic).Inc()
		return
	}
	metrics.EventsReceived.WithLabelValues(topic, event.eventName()).Inc()

	m.mu.RLock()
	handlers := m.handlers[topic]
	m.mu.RUnlock()
	for _, handler := range handlers {
		handler(event)
	}
}

// stateChanged updates the coarse liveness flag when the designated topic
// connects or disconnects. Other topics' state changes are logged only.
func (m *Multiplexer) stateChanged(topic string, connected bool) {
	if topic != m.opts.LivenessTopic {
		return
	}

	m.mu.Lock()
	m.live = connected
	m.mu.Unlock()

	if connected {
		metrics.DeviceConnected.Set(1)
	} else {
		metrics.DeviceConnected.Set(0)
	}
	if m.opts.OnConnected != nil {
		m.opts.OnConnected(connected)
	}
}

func (m *Multiplexer) topicURL(topic Topic) (string, error) {
	joined := m.baseURL + "/" + strings.TrimLeft(topic.Path, "/")
	if _, err := url.Parse(joined); err != nil {
		return "", err
	}
	return joined, nil
}
