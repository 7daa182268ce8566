package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"arena-chat-service/internal/events"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin allow-listing happens at the proxy in this deployment.
		return true
	},
}

// Manager tracks live connections by socket ID and implements the
// subscribe/deliver primitives the router and broadcasters consume.
// Subscription is bookkeeping only for a plain websocket transport;
// its value is the error on an unknown socket, which lets the room
// router abort before touching the registry.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewManager() *Manager {
	return &Manager{conns: make(map[string]*Conn)}
}

func (m *Manager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID()] = c
}

// Remove forgets the socket. Idempotent.
func (m *Manager) Remove(socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, socketID)
}

func (m *Manager) Subscribe(socketID, roomID string) error {
	m.mu.RLock()
	c, ok := m.conns[socketID]
	m.mu.RUnlock()

	if !ok || c.isClosed() {
		return fmt.Errorf("subscribe %s: %w", socketID, ErrConnClosed)
	}
	return nil
}

func (m *Manager) Unsubscribe(socketID, roomID string) error {
	// Nothing to tear down transport-side; membership lives in the
	// registry.
	return nil
}

// Deliver pushes an event to one socket. Fire-and-forget: a socket that
// disconnected between snapshot and delivery simply misses the event.
func (m *Manager) Deliver(socketID string, env events.Envelope) {
	m.mu.RLock()
	c, ok := m.conns[socketID]
	m.mu.RUnlock()

	if !ok {
		return
	}
	if err := c.Deliver(env); err != nil {
		slog.Debug("delivery skipped", "socketID", socketID, "event", env.Type, "error", err)
	}
}

// Count returns the number of live connections, for the health surface.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}
