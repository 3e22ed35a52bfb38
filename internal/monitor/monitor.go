// Package monitor exposes a live view of today's recognized speech over
// HTTP and WebSocket. This is additive: the wsConnection/writePump/readPump
// shape mirrors a websocket broadcast pattern common to live-feed servers,
// kept off by default (monitor.enabled) so it never touches the hard
// real-time capture/transcribe path.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxHistory bounds the in-memory snapshot served by GET /api/today;
	// the durable record is the markdown journal, this is just for late
	// joiners to a live view.
	maxHistory = 500
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server broadcasts SegmentMessages to connected WebSocket viewers and
// serves a JSON snapshot of recent history.
type Server struct {
	addr string

	mu      sync.Mutex
	history []SegmentMessage
	clients map[string]*wsConnection

	httpServer *http.Server
}

// New builds a Server listening on addr (e.g. ":8765").
func New(addr string) *Server {
	return &Server{
		addr:    addr,
		clients: make(map[string]*wsConnection),
	}
}

// Broadcast records seg in history and pushes it to every connected
// viewer. Safe to call from the pipeline's persist goroutine.
func (s *Server) Broadcast(seg SegmentMessage) {
	s.mu.Lock()
	s.history = append(s.history, seg)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	payload, err := json.Marshal(seg)
	clients := make([]*wsConnection, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("failed to marshal segment for broadcast", "error", err)
		return
	}
	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			slog.Warn("dropping slow monitor client", "clientID", c.clientID)
		}
	}
}

// Run starts the HTTP+WebSocket server and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/api/today", s.handleToday).Methods("GET")
	router.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{Addr: s.addr, Handler: router}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("monitor HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snapshot := make([]SegmentMessage, len(s.history))
	copy(snapshot, s.history)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

type wsConnection struct {
	conn     *websocket.Conn
	clientID string
	send     chan []byte
	server   *Server
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("monitor websocket upgrade failed", "error", err)
		return
	}

	wsConn := &wsConnection{
		conn:     conn,
		clientID: uuid.NewString(),
		send:     make(chan []byte, 256),
		server:   s,
	}

	s.mu.Lock()
	s.clients[wsConn.clientID] = wsConn
	s.mu.Unlock()

	go wsConn.writePump()
	go wsConn.readPump()
}

func (s *Server) unregister(clientID string) {
	s.mu.Lock()
	delete(s.clients, clientID)
	s.mu.Unlock()
}

// writePump drains send into the socket and keeps it alive with periodic
// pings; it owns the only writer on this connection, matching gorilla's
// one-writer-goroutine requirement.
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case segment, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(segment)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards any client-sent frames, existing only to drive the
// pong handler and detect a dead connection via its read deadline.
func (c *wsConnection) readPump() {
	defer func() {
		c.server.unregister(c.clientID)
		c.conn.Close()
		slog.Debug("monitor client disconnected", "clientID", c.clientID)
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
