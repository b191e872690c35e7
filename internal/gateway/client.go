package gateway

import (
	"sync"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
)

// sendBufferSize is the per-connection outbound queue depth. When the buffer
// is full further events are dropped rather than blocking the sender; REST
// endpoints remain the ground truth for anything missed.
const sendBufferSize = 256

// Conn abstracts a websocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single authenticated websocket connection. UserID, Role
// and Name are captured once at handshake time and never change for the
// lifetime of the connection.
type Client struct {
	UserID      string
	Role        string
	Name        string
	ConnectedAt time.Time

	Send chan []byte
	conn Conn

	mu     sync.Mutex
	closed bool
}

// NewClient creates a client for an authenticated connection.
func NewClient(userID, role, name string, conn Conn) *Client {
	return &Client{
		UserID:      userID,
		Role:        role,
		Name:        name,
		ConnectedAt: time.Now(),
		Send:        make(chan []byte, sendBufferSize),
		conn:        conn,
	}
}

// enqueue places data on the send buffer without blocking. It reports false
// when the buffer is full or the connection has already been torn down. The
// mutex makes the closed check and the channel send atomic with respect to
// closeSend: a hub goroutine holding a stale membership snapshot can race a
// disconnect, and a send on a closed channel would panic.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send buffer exactly once, unblocking the write pump.
// Safe to call concurrently with enqueue and with itself.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy Conn.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
