package client

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/haystack-game/haystack-client/internal/logger"
	"github.com/haystack-game/haystack-client/internal/protocol"
)

// readPump reads frames from the server and hands decoded messages to
// the receive channel. Delivery is blocking: replicated-state patches
// must arrive in order and must not be dropped under load.
func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.LogError("connection lost: %v", err)
			}
			return
		}

		msg, err := protocol.Decode(message)
		if err != nil {
			logger.LogError("failed to decode server message: %v", err)
			continue
		}

		select {
		case c.receive <- msg:
		case <-c.done:
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive with
// protocol-level pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
