package realtime

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/metrics"
)

var ErrAlreadyRegistered = errors.New("realtime: connection already registered")

// ServerOptions tune the websocket endpoint. Zero values fall back to
// the defaults below.
type ServerOptions struct {
	AllowedOrigin   string
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
}

const (
	defaultFrameBufferSize = 4096
	defaultSendBuffer      = 64
)

// Server owns the connection registry and exposes the websocket
// endpoint. Rooms and presence live in the relay and registry it wires
// each connection into.
type Server struct {
	dispatcher *Dispatcher
	logger     logging.Logger
	upgrader   websocket.Upgrader
	sendBuffer int

	mu    sync.Mutex
	conns map[string]Conn
}

func NewServer(dispatcher *Dispatcher, opts ServerOptions, logger logging.Logger) *Server {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = defaultFrameBufferSize
	}
	if opts.WriteBufferSize <= 0 {
		opts.WriteBufferSize = defaultFrameBufferSize
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}

	return &Server{
		dispatcher: dispatcher,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin:     originChecker(opts.AllowedOrigin),
		},
		sendBuffer: opts.SendBuffer,
		conns:      make(map[string]Conn),
	}
}

func originChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "" || allowed == "*" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

// Register adds a connection to the registry. Registering the same
// connection ID twice is refused rather than silently replacing the
// live entry.
func (s *Server) Register(c Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[c.ID()]; ok {
		return ErrAlreadyRegistered
	}

	s.conns[c.ID()] = c
	metrics.RealtimeConnections.Inc()

	return nil
}

// Unregister removes a connection. Unknown IDs are a no-op, so the
// teardown path can run from either pump without coordination.
func (s *Server) Unregister(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[c.ID()]; !ok {
		return
	}

	delete(s.conns, c.ID())
	metrics.RealtimeConnections.Dec()
}

// Connections reports the number of live registered connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.conns)
}

// HandleWS upgrades the request and runs the connection until the peer
// goes away.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(logging.Realtime, logging.Connection, "upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
			logging.ClientIp:     r.RemoteAddr,
		})
		return
	}

	client := NewClient(conn, s.sendBuffer, s.logger)
	if err := s.Register(client); err != nil {
		_ = conn.Close()
		return
	}

	s.logger.Info(logging.Realtime, logging.Connection, "connection established", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID(),
		logging.ClientIp:     r.RemoteAddr,
	})

	go client.WritePump()

	client.ReadPump(s.dispatcher)
	s.Unregister(client)

	s.logger.Info(logging.Realtime, logging.Connection, "connection closed", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID(),
	})
}
