// Package broadcast implements the push-only WebSocket server: every
// connected client receives every trade/latency/heartbeat event, and a
// co-hosted set of plain-HTTP endpoints expose read-only status and accept
// control commands (spec §6).
package broadcast

import (
	"encoding/json"
	"log"
	"sync"
)

// OnDisconnect is invoked exactly once per client, after it has been
// removed from the registry and closed (spec §4.5/§8 S4).
type OnDisconnect func(clientID uint64)

// Manager tracks connected clients and fans out encoded messages to all of
// them, isolating a single client's send failure from the rest.
type Manager struct {
	mu           sync.RWMutex
	clients      map[uint64]*Client
	bufferSize   int
	logger       *log.Logger
	onDisconnect OnDisconnect
}

func NewManager(bufferSize int, logger *log.Logger) *Manager {
	if bufferSize < 1 {
		bufferSize = 64
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		clients:    make(map[uint64]*Client),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// SetOnDisconnect installs the subscriber notified whenever a client is
// evicted. Replaces any previously set subscriber.
func (m *Manager) SetOnDisconnect(fn OnDisconnect) {
	m.mu.Lock()
	m.onDisconnect = fn
	m.mu.Unlock()
}

// Register adds a newly-upgraded connection as a client.
func (m *Manager) Register(c *Client) {
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()
	m.logger.Printf("broadcast: client %d connected", c.ID)
}

// Unregister removes and closes a client, then notifies the disconnect
// subscriber (if one is set) exactly once.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	_, existed := m.clients[c.ID]
	delete(m.clients, c.ID)
	onDisconnect := m.onDisconnect
	m.mu.Unlock()

	c.Close()
	m.logger.Printf("broadcast: client %d disconnected", c.ID)

	if existed && onDisconnect != nil {
		onDisconnect(c.ID)
	}
}

// BufferSize returns the configured per-client send-channel capacity.
func (m *Manager) BufferSize() int { return m.bufferSize }

// Broadcast JSON-encodes v once and fans it out to every connected client.
// A client whose send buffer is full is skipped, not disconnected: transient
// backpressure on one slow reader must never affect the others.
func (m *Manager) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.logger.Printf("broadcast: encode error: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		c.Send(data)
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
