package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Client represents a connected push-only WebSocket subscriber. Unlike a
// full duplex feed, clients never subscribe to a subset of traffic: every
// connected client receives every broadcast message (spec §6).
type Client struct {
	ID   uint64
	Conn *websocket.Conn

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// Dropped counts messages discarded because the send buffer was full.
	Dropped uint64
}

var clientIDCounter uint64

func NewClient(conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		ID:     atomic.AddUint64(&clientIDCounter, 1),
		Conn:   conn,
		sendCh: make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send enqueues data for the write pump. Returns false if the buffer is
// full, in which case the message is dropped rather than blocking the
// broadcaster.
func (c *Client) Send(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		atomic.AddUint64(&c.Dropped, 1)
		return false
	}
}

func (c *Client) SendCh() <-chan []byte { return c.sendCh }
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}
