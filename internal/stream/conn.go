package stream

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alertdeck/alertdeck/internal/observability/metrics"
)

const (
	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout = 10 * time.Second

	// DefaultReconnectAttempts is the per-topic reconnection ceiling.
	DefaultReconnectAttempts = 10

	// DefaultReconnectDelay is the fixed delay between reconnection
	// attempts. Deliberately not exponential; the device sits on the same
	// network segment as the console.
	DefaultReconnectDelay = 3 * time.Second
)

// frameHandler receives every raw frame read from a topic connection.
type frameHandler func(topic string, frame []byte)

// stateHandler is notified on every topic-level connect and disconnect.
type stateHandler func(topic string, connected bool)

// topicConn owns one persistent subscription. It reconnects on its own with
// a fixed delay up to the attempt ceiling; a dead topic never tears down its
// siblings. The attempt counter resets after every successful connect.
type topicConn struct {
	topic       string
	url         string
	maxAttempts int
	retryDelay  time.Duration

	onFrame frameHandler
	onState stateHandler

	stop chan struct{}
	done chan struct{}
}

func newTopicConn(topic, url string, maxAttempts int, retryDelay time.Duration, onFrame frameHandler, onState stateHandler) *topicConn {
	return &topicConn{
		topic:       topic,
		url:         url,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		onFrame:     onFrame,
		onState:     onState,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// run dials, reads until failure, and retries. It returns when the stop
// channel closes or the attempt ceiling is reached.
func (c *topicConn) run() {
	defer close(c.done)

	attempts := 0
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		conn, err := c.dial()
		if err != nil {
			attempts++
			metrics.Reconnects.WithLabelValues(c.topic).Inc()
			if attempts >= c.maxAttempts {
				log.Printf("StreamMux: topic %s gave up after %d attempts: %v", c.topic, attempts, err)
				return
			}
			log.Printf("StreamMux: topic %s connect failed (attempt %d/%d): %v", c.topic, attempts, c.maxAttempts, err)
			if !c.sleep(c.retryDelay) {
				return
			}
			continue
		}

		attempts = 0
		log.Printf("StreamMux: topic %s connected", c.topic)
		c.onState(c.topic, true)

		c.readLoop(conn)
		conn.Close()
		c.onState(c.topic, false)

		select {
		case <-c.stop:
			return
		default:
		}
		log.Printf("StreamMux: topic %s disconnected, reconnecting in %v", c.topic, c.retryDelay)
		if !c.sleep(c.retryDelay) {
			return
		}
	}
}

func (c *topicConn) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(c.url, nil)
	return conn, err
}

// readLoop delivers frames until the connection errors or stop is signalled.
func (c *topicConn) readLoop(conn *websocket.Conn) {
	frames := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			frames <- data
		}
	}()

	for {
		select {
		case <-c.stop:
			// Unblock the reader goroutine and drain it out.
			conn.Close()
			for {
				select {
				case <-frames:
				case <-readErr:
					return
				}
			}
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("StreamMux: topic %s read error: %v", c.topic, err)
			}
			return
		case frame := <-frames:
			c.onFrame(c.topic, frame)
		}
	}
}

// sleep waits for the retry delay, returning false if stopped meanwhile.
// Stopping must cancel every pending reconnection timer.
func (c *topicConn) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.stop:
		return false
	case <-timer.C:
		return true
	}
}

// shutdown signals the connection to stop and waits for run to exit.
func (c *topicConn) shutdown() {
	close(c.stop)
	<-c.done
}
