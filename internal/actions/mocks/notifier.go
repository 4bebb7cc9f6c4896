package mocks

import (
	"context"
	"sync"
)

// Message is a notification captured by MockNotifier.
type Message struct {
	Title string
	Body  string
}

// MockNotifier is a types.Notifier that records messages.
type MockNotifier struct {
	Err error // Returned by every Send when set.

	mu   sync.Mutex
	sent []Message
}

// Name identifies the mock notifier.
func (n *MockNotifier) Name() string { return "mock" }

// Send records the message and returns Err.
func (n *MockNotifier) Send(_ context.Context, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, Message{Title: title, Body: message})

	return n.Err
}

// Sent returns the recorded messages.
func (n *MockNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Message(nil), n.sent...)
}
