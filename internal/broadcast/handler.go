package broadcast

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	heartbeatPeriod = 5 * time.Second
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler upgrades a connection and registers it with the manager.
// The feed is push-only: inbound frames are read and discarded, solely to
// drive the pong/close handshake.
func (m *Manager) StreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.logger.Printf("broadcast: upgrade error: %v", err)
			return
		}

		client := NewClient(conn, m.bufferSize)
		m.Register(client)

		go m.writePump(client)
		go m.readPump(client)
	}
}

func (m *Manager) readPump(c *Client) {
	defer m.Unregister(c)

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Manager) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.SendCh():
			if !ok {
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done():
			return
		}
	}
}

// RunHeartbeat periodically broadcasts a heartbeat envelope until stopCh is
// closed. build constructs the envelope fresh each tick so its timestamp is
// current.
func (m *Manager) RunHeartbeat(stopCh <-chan struct{}, build func() any) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.Broadcast(build())
		}
	}
}

// WrapPlainText implements spec §4.5's uniform HTTP envelope: any
// non-WebSocket request is dispatched to body, its returned string wrapped
// in 200 OK with text/plain and permissive CORS headers; OPTIONS is
// answered directly with 204. A body error still yields 200 (per §7,
// configuration/control errors are never surfaced as failures) with the
// error text as the response.
func WrapPlainText(body func(r *http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if applyCORS(w, r) {
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body(r)))
	}
}

// applyCORS sets permissive CORS headers and handles the OPTIONS preflight.
// Returns true if the request was fully handled (preflight) and the caller
// should return immediately.
func applyCORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}
