package testutil

import (
	"context"
	"sync"

	"github.com/vk/hookhost/internal/gateway"
	"github.com/vk/hookhost/internal/interaction"
)

// SentMessage is a channel message recorded by FakeConnection.
type SentMessage struct {
	ChannelID string
	Content   string
}

// FakeConnection stands in for the gateway. Responses are recorded by the
// embedded RecordingResponder; inbound traffic is simulated with Ready,
// Interact and Event.
type FakeConnection struct {
	RecordingResponder

	ConnectErr error

	mu            sync.Mutex
	onReady       func(ctx context.Context)
	onInteraction gateway.InteractionHandler
	onEvent       gateway.EventHandler
	messages      []SentMessage
	connected     bool
}

func (c *FakeConnection) OnReady(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

func (c *FakeConnection) OnInteraction(fn gateway.InteractionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInteraction = fn
}

func (c *FakeConnection) OnEvent(fn gateway.EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = fn
}

// Connect succeeds unless ConnectErr is set. It does not fire the ready
// callback; call Ready for that.
func (c *FakeConnection) Connect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ConnectErr != nil {
		return c.ConnectErr
	}
	c.connected = true
	return nil
}

func (c *FakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *FakeConnection) SendMessage(_ context.Context, channelID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, SentMessage{ChannelID: channelID, Content: content})
	return nil
}

// Messages returns a copy of the sent channel messages.
func (c *FakeConnection) Messages() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.messages...)
}

// Ready fires the ready callback.
func (c *FakeConnection) Ready(ctx context.Context) {
	c.mu.Lock()
	fn := c.onReady
	c.mu.Unlock()
	if fn != nil {
		fn(ctx)
	}
}

// Interact delivers an inbound request event.
func (c *FakeConnection) Interact(ctx context.Context, ev interaction.Event) {
	c.mu.Lock()
	fn := c.onInteraction
	c.mu.Unlock()
	if fn != nil {
		fn(ctx, ev)
	}
}

// Event delivers a generic named event.
func (c *FakeConnection) Event(ctx context.Context, name string, data map[string]any) {
	c.mu.Lock()
	fn := c.onEvent
	c.mu.Unlock()
	if fn != nil {
		fn(ctx, name, data)
	}
}
