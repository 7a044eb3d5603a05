package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// connWrapper serializes writes to the underlying websocket, which
// gorilla requires.
type connWrapper struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newConnWrapper(conn *websocket.Conn) *connWrapper {
	return &connWrapper{conn: conn}
}

func (w *connWrapper) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) WriteControl(messageType int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.conn.WriteMessage(messageType, nil)
}

func (w *connWrapper) Close() error {
	return w.conn.Close()
}

// Client binds one websocket to the dispatcher. A single read pump
// feeds Dispatch, so a sender's events reach the relay in the order
// they arrived; a single write pump drains the buffered send channel,
// so each receiver sees broadcasts in FIFO order.
type Client struct {
	id      string
	conn    *connWrapper
	send    chan *Envelope
	logger  logging.Logger
	once    sync.Once
	closeCh chan struct{}
}

// NewClient wraps an upgraded connection. sendBuffer is the depth of
// the outbound queue drained by WritePump.
func NewClient(conn *websocket.Conn, sendBuffer int, logger logging.Logger) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}

	return &Client{
		id:      uuid.NewString(),
		conn:    newConnWrapper(conn),
		send:    make(chan *Envelope, sendBuffer),
		logger:  logger,
		closeCh: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send enqueues an envelope for the write pump. It never blocks: when
// the buffer is full the envelope is dropped and counted, keeping one
// slow receiver from stalling the whole room.
func (c *Client) Send(env *Envelope) {
	select {
	case c.send <- env:
	case <-c.closeCh:
	default:
		metrics.RealtimeEventsDropped.Inc()
		c.logger.Warn(logging.Realtime, logging.Broadcast, "send buffer full, dropping event", map[logging.ExtraKey]any{
			logging.ConnectionID: c.id,
			logging.EventName:    env.Event,
		})
	}
}

// ReadPump consumes inbound frames until the peer goes away, then runs
// the disconnect path exactly once.
func (c *Client) ReadPump(dispatcher *Dispatcher) {
	defer func() {
		dispatcher.Disconnect(c)
		c.close()
	}()

	c.conn.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn(logging.Realtime, logging.Connection, "read error", map[logging.ExtraKey]any{
					logging.ConnectionID: c.id,
					logging.ErrorMessage: err.Error(),
				})
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			metrics.RealtimeEventsDropped.Inc()
			c.logger.Warn(logging.Realtime, logging.Dispatch, "unparseable frame dropped", map[logging.ExtraKey]any{
				logging.ConnectionID: c.id,
			})
			continue
		}
		if env.Payload == nil {
			env.Payload = map[string]any{}
		}

		dispatcher.Dispatch(c, &env)
	}
}

// WritePump drains the send channel and keeps the connection alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Warn(logging.Realtime, logging.Connection, "write error", map[logging.ExtraKey]any{
					logging.ConnectionID: c.id,
					logging.ErrorMessage: err.Error(),
				})
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage); err != nil {
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.closeCh)
		_ = c.conn.Close()
	})
}
