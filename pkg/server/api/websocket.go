package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/server/refresh"
)

// WebSocketServer pushes every published snapshot to connected clients.
type WebSocketServer struct {
	addr     string
	logger   *logging.Logger
	upgrader websocket.Upgrader

	// Client management
	mu      sync.Mutex
	clients map[*WebSocketClient]bool

	// Snapshot updates channel
	updates chan *refresh.Snapshot

	// Server control
	ctx    context.Context
	cancel context.CancelFunc
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *WebSocketServer
}

// ClientMessage represents a message from a client.
type ClientMessage struct {
	Type string `json:"type"` // "ping"
}

// SnapshotMessage is sent to clients on every published snapshot.
type SnapshotMessage struct {
	Type      string            `json:"type"`      // "snapshot"
	Timestamp string            `json:"timestamp"` // ISO 8601 timestamp
	Snapshot  *refresh.Snapshot `json:"snapshot"`
}

// NewWebSocketServer creates a new WebSocket server.
func NewWebSocketServer(addr string, logger *logging.Logger) *WebSocketServer {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	return &WebSocketServer{
		addr:   addr,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// Allow all origins (configure CORS as needed)
				return true
			},
		},
		clients: make(map[*WebSocketClient]bool),
		updates: make(chan *refresh.Snapshot, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start runs the WebSocket listener until Stop is called.
func (s *WebSocketServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start broadcast goroutine
	go s.broadcastUpdates()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("WebSocket server error", "error", err)
		}
	}()

	// Wait for caller cancellation or Stop; either way the broadcast
	// goroutine is reaped on the way out.
	defer s.cancel()
	select {
	case <-ctx.Done():
	case <-s.ctx.Done():
	}

	// Fresh context: the triggering one is already cancelled
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Stop stops the WebSocket server.
func (s *WebSocketServer) Stop() {
	s.cancel()
}

// SendUpdate queues a snapshot for broadcast. Safe to use as a refresher
// subscriber callback.
func (s *WebSocketServer) SendUpdate(snap *refresh.Snapshot) {
	select {
	case s.updates <- snap:
	case <-time.After(100 * time.Millisecond):
		s.logger.Warn("Update channel full, dropping snapshot update")
	}
}

// handleWebSocket handles new WebSocket connections.
func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := &WebSocketClient{
		conn:   conn,
		send:   make(chan []byte, 16),
		server: s,
	}

	s.registerClient(client)

	// Start client goroutines
	go client.writePump()
	go client.readPump()

	s.logger.Info("New WebSocket client connected", "remote", conn.RemoteAddr())
}

// registerClient adds a client to the server.
func (s *WebSocketServer) registerClient(client *WebSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

// unregisterClient removes a client from the server.
func (s *WebSocketServer) unregisterClient(client *WebSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// trySend delivers data to a client if it is still registered. Closing
// always happens together with map removal under mu, so a registered
// client's send channel is open.
func (s *WebSocketServer) trySend(client *WebSocketClient, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// broadcastUpdates forwards queued snapshots to all clients.
func (s *WebSocketServer) broadcastUpdates() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case snap := <-s.updates:
			s.broadcast(snap)
		}
	}
}

// broadcast sends a snapshot to every client. Clients whose send buffer
// is full are dropped rather than allowed to stall the broadcast.
func (s *WebSocketServer) broadcast(snap *refresh.Snapshot) {
	if snap == nil {
		return
	}

	message := SnapshotMessage{
		Type:      "snapshot",
		Timestamp: time.Now().Format(time.RFC3339),
		Snapshot:  snap,
	}

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Failed to marshal snapshot update", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			s.logger.Warn("Client send buffer full, dropping client", "remote", client.conn.RemoteAddr())
			delete(s.clients, client)
			close(client.send)
		}
	}
}

// writePump sends messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads messages from the WebSocket connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage processes client messages.
func (c *WebSocketClient) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.server.logger.Warn("Invalid client message", "error", err)
		return
	}

	switch msg.Type {
	case "ping":
		c.sendPong()
	default:
		c.server.logger.Warn("Unknown message type", "type", msg.Type)
	}
}

// sendPong sends a pong response.
func (c *WebSocketClient) sendPong() {
	pong := map[string]string{"type": "pong"}
	data, _ := json.Marshal(pong)
	c.server.trySend(c, data)
}
