package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TOPBARD/Connect-Hub/logger"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 75 * time.Second
	pingPeriod    = 25 * time.Second
	maxFrameBytes = 64 * 1024
	sendQueueSize = 64
)

// Client represents a user session connected to the gateway.
// One user keeps at most one live client; the latest connection wins.
type Client struct {
	ConnID string          // Unique connection ID (unique within this process)
	UserID string          // User ID from the handshake
	WS     *websocket.Conn // WebSocket connection object
	Send   chan []byte     // Outbound queue (consumed by a single writer goroutine)

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a new client connection object.
func NewClient(connID, userID string, ws *websocket.Conn) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue offers a frame to the writer without blocking. A full queue means a
// slow client; the frame is dropped, delivery is best effort.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		logger.Warnf("[WS] send queue full, drop frame user=%s conn=%s", c.UserID, c.ConnID)
		return false
	}
}

// Close tears the connection down; safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.WS.Close()
	})
}

// writePump is the single writer for this connection. It drains Send and keeps
// the peer alive with pings; any write error ends the session.
func (c *Client) writePump(onExit func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		if onExit != nil {
			onExit()
		}
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			if !ok {
				return
			}
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debugf("[WS] write err user=%s conn=%s err=%v", c.UserID, c.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
