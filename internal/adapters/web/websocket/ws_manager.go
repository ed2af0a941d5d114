package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// Message types pushed to dashboard clients.
const (
	TypeActivityNew           = "activity:new"
	TypeVerificationCompleted = "verification:completed"
)

const (
	writeTimeout = 5 * time.Second
	queueSize    = 64
)

var _ ports.ActivityNotifier = (*WSManager)(nil)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// VerificationEvent is the payload of a finished batch verification.
type VerificationEvent struct {
	UserID        string `json:"userId"`
	Total         int    `json:"total"`
	Valid         int    `json:"valid"`
	Discrepancies int    `json:"discrepancies"`
	Failed        int    `json:"failed"`
}

// WSManager fans activity out to connected dashboard clients.
type WSManager struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	queue    chan WSMessage
	upgrader websocket.Upgrader
	logger   *slog.Logger
	readers  sync.WaitGroup
}

// NewWSManager creates a manager accepting connections from allowedOrigins.
// Same-origin requests are always accepted; "*" accepts any origin.
func NewWSManager(allowedOrigins []string, logger *slog.Logger) *WSManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &WSManager{
		clients: make(map[*websocket.Conn]struct{}),
		queue:   make(chan WSMessage, queueSize),
		logger:  logger.With("component", "websocket"),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin(allowedOrigins),
	}
	return m
}

func (m *WSManager) checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		m.logger.Warn("Rejected websocket origin", "origin", origin)
		return false
	}
}

// Start delivers queued messages until ctx is cancelled, then disconnects
// every client.
func (m *WSManager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case msg := <-m.queue:
				m.broadcastMessage(msg)
			}
		}
	}()
}

// Wait blocks until every client reader has exited.
func (m *WSManager) Wait() {
	m.readers.Wait()
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debug("Upgrade failed", "error", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()

	m.logger.Debug("WebSocket connected", "remote", r.RemoteAddr)

	// Drain client frames so close and ping are handled
	m.readers.Add(1)
	go func() {
		defer m.readers.Done()
		defer m.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyActivity queues a new activity entry for broadcast. Entries are
// dropped when the queue is full.
func (m *WSManager) NotifyActivity(activity domain.Activity) {
	m.enqueue(WSMessage{Type: TypeActivityNew, Payload: activity})
}

// NotifyVerification queues the counts of a finished batch verification.
func (m *WSManager) NotifyVerification(userID string, summary domain.VerificationSummary) {
	m.enqueue(WSMessage{
		Type: TypeVerificationCompleted,
		Payload: VerificationEvent{
			UserID:        userID,
			Total:         summary.Total,
			Valid:         summary.Valid,
			Discrepancies: summary.Discrepancies,
			Failed:        summary.Failed,
		},
	})
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *WSManager) enqueue(msg WSMessage) {
	select {
	case m.queue <- msg:
	default:
		m.logger.Warn("WebSocket queue full, dropping message", "type", msg.Type)
	}
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("JSON marshal error", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

func (m *WSManager) remove(conn *websocket.Conn) {
	m.mu.Lock()
	delete(m.clients, conn)
	m.mu.Unlock()
	conn.Close()
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(m.clients, conn)
	}
}
