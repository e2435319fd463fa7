package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystack-game/haystack-client/internal/protocol"
)

var upgrader = websocket.Upgrader{}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			break
		}
		_ = c.WriteMessage(mt, message)
	}
}

func TestClient_ConnectAndSend(t *testing.T) {
	// Mock WS server that echoes every frame back.
	s := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer s.Close()

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http")

	client := NewClient(wsURL)
	require.NotNil(t, client)

	err := client.Connect()
	require.NoError(t, err)
	defer client.Close()

	time.Sleep(100 * time.Millisecond)
	assert.True(t, client.IsConnected())

	msg := protocol.MustNewMessage(protocol.MsgRoundStart, nil)
	err = client.SendMessage(msg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	received, err := client.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, protocol.MsgRoundStart, received.Type)
}

func TestClient_ReceiveAfterClose(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer s.Close()

	client := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	require.NoError(t, client.Connect())

	client.Close()
	assert.False(t, client.IsConnected())

	_, err := client.Receive(context.Background())
	assert.ErrorIs(t, err, ErrConnectionClosed)

	err = client.SendMessage(protocol.MustNewMessage(protocol.MsgRoundFinish, nil))
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestClient_ReceiveContextCancel(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer s.Close()

	client := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	require.NoError(t, client.Connect())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
