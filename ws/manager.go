package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rental-server/events"
)

const writeWait = 5 * time.Second

// Client is one registered connection. Writes are serialized; gorilla
// connections allow one concurrent writer.
type Client struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
	userID    string
	mgr       *Manager
}

func (c *Client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// WriteJSON replies on this connection only.
func (c *Client) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(b)
}

// Close unregisters the connection and closes it. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mgr.remove(c.userID, c)
		_ = c.conn.Close()
	})
}

// Manager keeps track of live websocket connections per user.
// A user may hold several at once (one per open tab).
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // userID -> connections
}

func NewManager() *Manager {
	return &Manager{clients: make(map[string]map[*Client]struct{})}
}

// Register adds conn for userID. Close on the returned client removes it.
func (m *Manager) Register(userID string, conn *websocket.Conn) *Client {
	c := &Client{conn: conn, userID: userID, mgr: m}
	m.mu.Lock()
	if m.clients[userID] == nil {
		m.clients[userID] = make(map[*Client]struct{})
	}
	m.clients[userID][c] = struct{}{}
	m.mu.Unlock()
	return c
}

func (m *Manager) remove(userID string, c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients[userID], c)
	if len(m.clients[userID]) == 0 {
		delete(m.clients, userID)
	}
}

// SendToUser writes payload to every connection of userID and reports how many
// received it. Connections that fail are dropped.
func (m *Manager) SendToUser(userID string, payload []byte) int {
	m.mu.RLock()
	targets := make([]*Client, 0, len(m.clients[userID]))
	for c := range m.clients[userID] {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			log.Printf("[ws] write to user %s failed: %v", userID, err)
			c.Close()
			continue
		}
		sent++
	}
	return sent
}

// Send marshals v as JSON and delivers it like SendToUser.
func (m *Manager) Send(userID string, v any) (int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return m.SendToUser(userID, b), nil
}

func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID]) > 0
}

// Connections returns userID -> number of open connections.
func (m *Manager) Connections() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.clients))
	for id, set := range m.clients {
		out[id] = len(set)
	}
	return out
}

type NotificationMessage struct {
	Type         string `json:"type"`
	Notification any    `json:"notification"`
}

// NotificationPusher forwards notification.created events to the owner's sockets.
func (m *Manager) NotificationPusher() events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		p, ok := ev.Data.(events.NotificationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", ev.Data, ev.Key)
		}
		if !m.IsConnected(p.Notification.UserID) {
			return nil
		}
		_, err := m.Send(p.Notification.UserID, NotificationMessage{Type: "notification", Notification: p.Notification})
		return err
	}
}
