// Package client implements the websocket transport for the haystack
// room server: one connection, a read pump and a write pump, with
// protocol-level ping/pong keepalive. All game semantics live above
// this layer; the transport only moves protocol.Message frames.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haystack-game/haystack-client/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 10 * time.Second

	sendBuffer    = 64
	receiveBuffer = 64
)

var ErrConnectionClosed = errors.New("connection closed")

// Client is a websocket client for a single server connection.
type Client struct {
	ServerURL string
	conn      *websocket.Conn
	send      chan []byte
	receive   chan *protocol.Message
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewClient creates a client for the given ws:// URL.
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL: serverURL,
		send:      make(chan []byte, sendBuffer),
		receive:   make(chan *protocol.Message, receiveBuffer),
		done:      make(chan struct{}),
	}
}

// Connect dials the server and starts the pumps.
func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, _, err := dialer.Dial(c.ServerURL, nil)
	if err != nil {
		return err
	}

	c.conn = conn

	go c.readPump()
	go c.writePump()

	return nil
}

// SendMessage queues a message for the write pump.
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}
	c.mu.RUnlock()

	data, err := msg.Encode()
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Receive blocks until the next server message, the context is done,
// or the connection closes.
func (c *Client) Receive(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrConnectionClosed
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// IsConnected reports whether the connection is still up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}
