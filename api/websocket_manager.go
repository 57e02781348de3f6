package api

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsClient is one editing session's connection. Writes from the read loop
// and from preview jobs share mu.
type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
	deck string
}

// WSConnectionManager tracks open editing sessions and which deck each one
// is on, for per-connection writes and deck-scoped notifications.
type WSConnectionManager struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient
}

func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		clients: make(map[*websocket.Conn]*wsClient),
	}
}

// Add registers a connection and returns the session ID used in logs.
func (m *WSConnectionManager) Add(conn *websocket.Conn) string {
	c := &wsClient{id: uuid.NewString()[:8], conn: conn}
	m.mu.Lock()
	m.clients[conn] = c
	m.mu.Unlock()
	log.Printf("[session] %s opened from %s", c.id, conn.RemoteAddr())
	return c.id
}

func (m *WSConnectionManager) Remove(conn *websocket.Conn) {
	m.mu.Lock()
	c, ok := m.clients[conn]
	delete(m.clients, conn)
	m.mu.Unlock()
	if ok {
		log.Printf("[session] %s closed", c.id)
	}
}

// SetDeck records the deck a session is editing.
func (m *WSConnectionManager) SetDeck(conn *websocket.Conn, slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[conn]; ok {
		c.deck = slug
	}
}

// Len reports the number of open sessions.
func (m *WSConnectionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Editing counts open sessions per deck. Sessions that have not selected a
// deck yet are not counted.
func (m *WSConnectionManager) Editing() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for _, c := range m.clients {
		if c.deck != "" {
			out[c.deck]++
		}
	}
	return out
}

// BroadcastDeck sends message to every session editing slug. Connections
// that fail the write are dropped.
func (m *WSConnectionManager) BroadcastDeck(slug string, message any) {
	m.mu.RLock()
	targets := make([]*wsClient, 0, len(m.clients))
	for _, c := range m.clients {
		if c.deck == slug {
			targets = append(targets, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		err := c.conn.WriteJSON(message)
		c.mu.Unlock()

		if err != nil {
			log.Printf("[session] %s dropped: %v", c.id, err)
			m.Remove(c.conn)
		}
	}
}

// WriteJSON writes to one connection under its mutex.
func (m *WSConnectionManager) WriteJSON(conn *websocket.Conn, message any) error {
	m.mu.RLock()
	c, exists := m.clients[conn]
	m.mu.RUnlock()

	if !exists {
		return conn.WriteJSON(message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}
