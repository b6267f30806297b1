package dictation

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is the JSON frame a recognizer client sends.
type Message struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}

// Ack is sent back to a client for every chunk applied to the session.
type Ack struct {
	ClientID string `json:"client_id"`
	Revision uint64 `json:"revision"`
}

// Logger is the logging surface the server reports connection events to.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Server accepts websocket connections from recognizer clients and exposes
// their transcripts as a single Source.
type Server struct {
	upgrader websocket.Upgrader
	chunks   chan Chunk
	done     chan struct{}
	log      Logger

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Ack
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(l Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCheckOrigin overrides the origin check. By default every origin is
// accepted, matching a local recognizer page.
func WithCheckOrigin(fn func(r *http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewServer creates a dictation server.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		chunks:  make(chan Chunk, 64),
		done:    make(chan struct{}),
		log:     nopLogger{},
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP upgrades the request and reads transcript messages until the
// client disconnects or the server closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("dictation upgrade failed: %v", err)
		return
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan Ack, 64)}
	if !s.register(c) {
		conn.Close()
		return
	}
	s.log.Debug("dictation client %s connected", c.id)

	defer func() {
		s.unregister(c)
		conn.Close()
		s.log.Debug("dictation client %s disconnected", c.id)
	}()

	go s.writeLoop(c)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !s.isClosed() {
				s.log.Warn("dictation read from %s: %v", c.id, err)
			}
			return
		}

		chunk := Chunk{Text: msg.Transcript, Final: msg.Final, ClientID: c.id}
		if chunk.Applies() {
			chunk.ack = s.acker(c)
		}

		select {
		case s.chunks <- chunk:
		case <-s.done:
			return
		}
	}
}

func (s *Server) acker(c *client) func(uint64) {
	return func(rev uint64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.clients[c.id]; !ok {
			return
		}
		select {
		case c.send <- Ack{ClientID: c.id, Revision: rev}:
		default:
			s.log.Warn("dictation client %s is not reading acks", c.id)
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for ack := range c.send {
		if err := c.conn.WriteJSON(ack); err != nil {
			s.log.Warn("dictation write to %s: %v", c.id, err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c.id] = c
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Next returns the next transcript chunk from any client. After Close it
// returns io.EOF.
func (s *Server) Next(ctx context.Context) (Chunk, error) {
	select {
	case <-s.done:
		return Chunk{}, io.EOF
	default:
	}

	select {
	case c := <-s.chunks:
		return c, nil
	case <-s.done:
		return Chunk{}, io.EOF
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	}
}

// Close stops accepting chunks and disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for _, c := range s.clients {
		conns = append(conns, c.conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	return nil
}
