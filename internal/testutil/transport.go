// Package testutil provides transport doubles for engine tests.
package testutil

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/haystack-game/haystack-client/internal/protocol"
)

// FakeTransport is a scripted transport: outbound messages are
// recorded, inbound messages are served from a queue. Not safe for
// concurrent use; intended for synchronous engine tests.
type FakeTransport struct {
	Sent   []*protocol.Message
	queue  []*protocol.Message
	closed bool
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Queue appends messages the next Receive calls will return in order.
func (f *FakeTransport) Queue(msgs ...*protocol.Message) {
	f.queue = append(f.queue, msgs...)
}

func (f *FakeTransport) SendMessage(msg *protocol.Message) error {
	if f.closed {
		return errors.New("transport closed")
	}
	f.Sent = append(f.Sent, msg)
	return nil
}

func (f *FakeTransport) Receive(ctx context.Context) (*protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.queue) == 0 {
		return nil, errors.New("no queued messages")
	}
	msg := f.queue[0]
	f.queue = f.queue[1:]
	return msg, nil
}

func (f *FakeTransport) Close() { f.closed = true }

// SentTypes returns the types of all recorded outbound messages.
func (f *FakeTransport) SentTypes() []protocol.MessageType {
	types := make([]protocol.MessageType, len(f.Sent))
	for i, m := range f.Sent {
		types[i] = m.Type
	}
	return types
}

// MockTransport is a testify mock for tests that assert on calls.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) SendMessage(msg *protocol.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockTransport) Receive(ctx context.Context) (*protocol.Message, error) {
	args := m.Called(ctx)
	if msg, ok := args.Get(0).(*protocol.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransport) Close() {
	m.Called()
}
