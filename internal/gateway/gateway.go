// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package gateway maintains the socket.io connection to the remote service.
// Inbound it delivers the ready signal, request events and generic events;
// outbound it carries responses and channel messages.
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/interaction"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Wire event names.
const (
	EventInteraction = "interaction"
	EventGeneric     = "event"

	EmitReply    = "interaction:reply"
	EmitDefer    = "interaction:defer"
	EmitFollowUp = "interaction:followup"
	EmitEdit     = "interaction:edit"
	EmitMessage  = "message:create"
)

// DefaultConnectTimeout bounds how long Connect waits for the handshake.
const DefaultConnectTimeout = 15 * time.Second

// ErrNotConnected is returned when sending before Connect succeeded.
var ErrNotConnected = errors.New("gateway is not connected")

// ErrConnectPending is returned by Connect when the first attempt failed
// but the socket keeps reconnecting in the background. The ready callback
// fires once a later attempt succeeds.
var ErrConnectPending = errors.New("gateway connection pending")

// Config describes the remote endpoint.
type Config struct {
	URL                string
	Namespace          string
	Token              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// InteractionHandler receives decoded request events.
type InteractionHandler func(ctx context.Context, ev interaction.Event)

// EventHandler receives generic named events.
type EventHandler func(ctx context.Context, name string, data map[string]any)

// emitter is the outbound half of a socket.
type emitter interface {
	Emit(ev string, args ...any) error
}

// Gateway is a socket.io client. Handlers must be set before Connect.
type Gateway struct {
	cfg Config

	onReady       func(ctx context.Context)
	onInteraction InteractionHandler
	onEvent       EventHandler

	readyOnce sync.Once

	mu     sync.RWMutex
	ctx    context.Context
	out    emitter
	socket *socket.Socket
}

// New returns an unconnected Gateway.
func New(cfg Config) *Gateway {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &Gateway{cfg: cfg, ctx: context.Background()}
}

// OnReady sets the callback run on the first successful connection only.
func (g *Gateway) OnReady(fn func(ctx context.Context)) { g.onReady = fn }

// OnInteraction sets the request event handler.
func (g *Gateway) OnInteraction(fn InteractionHandler) { g.onInteraction = fn }

// OnEvent sets the generic event handler.
func (g *Gateway) OnEvent(fn EventHandler) { g.onEvent = fn }

// Connect dials the remote service and waits for the handshake to finish.
func (g *Gateway) Connect(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "gateway", "url", g.cfg.URL)
	logger.Info("Connecting to remote service...")

	parsedURL, err := url.Parse(g.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if g.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	if g.cfg.Token != "" {
		opts.SetAuth(map[string]any{"token": g.cfg.Token})
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(g.cfg.Namespace, opts)

	connectChan := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
		g.ready()
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Disconnected.", "reason", reason)
	})
	io.On(types.EventName(EventInteraction), func(args ...any) {
		g.HandleInteraction(args...)
	})
	io.On(types.EventName(EventGeneric), func(args ...any) {
		g.HandleEvent(args...)
	})

	g.mu.Lock()
	g.ctx = ctx
	g.out = io
	g.socket = io
	g.mu.Unlock()

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			return fmt.Errorf("%w: socket.io connection failed: %v", ErrConnectPending, err)
		}
		return nil
	case <-ctx.Done():
		io.Disconnect()
		return fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(g.cfg.ConnectTimeout):
		return fmt.Errorf("%w: timed out after %s waiting for socket.io connection", ErrConnectPending, g.cfg.ConnectTimeout)
	}
}

// Close disconnects the socket.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.socket != nil {
		g.socket.Disconnect()
		g.socket = nil
	}
	g.out = nil
	return nil
}

func (g *Gateway) ready() {
	g.readyOnce.Do(func() {
		if g.onReady != nil {
			g.onReady(g.baseContext())
		}
	})
}

func (g *Gateway) baseContext() context.Context {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ctx
}

// HandleInteraction decodes a raw request event and hands it to the
// interaction handler. Undecodable payloads are logged and dropped.
func (g *Gateway) HandleInteraction(args ...any) {
	ctx := g.baseContext()
	logger := ctxlog.FromContext(ctx)

	if len(args) == 0 {
		logger.Warn("Received interaction event without payload.")
		return
	}
	var ev interaction.Event
	if err := decode(args[0], &ev); err != nil {
		logger.Warn("Dropping undecodable interaction event.", "error", err)
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if g.onInteraction != nil {
		g.onInteraction(ctx, ev)
	}
}

type genericEvent struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

// HandleEvent decodes a raw generic event and hands it to the event
// handler.
func (g *Gateway) HandleEvent(args ...any) {
	ctx := g.baseContext()
	logger := ctxlog.FromContext(ctx)

	if len(args) == 0 {
		return
	}
	var ev genericEvent
	if err := decode(args[0], &ev); err != nil || ev.Name == "" {
		logger.Warn("Dropping undecodable event.", "error", err)
		return
	}
	if g.onEvent != nil {
		g.onEvent(ctx, ev.Name, ev.Data)
	}
}

func decode(raw any, target any) error {
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, target)
}

func (g *Gateway) emit(ctx context.Context, event string, payload map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.RLock()
	out := g.out
	g.mu.RUnlock()
	if out == nil {
		return ErrNotConnected
	}
	if err := out.Emit(event, payload); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

func messagePayload(eventID string, msg interaction.Message) map[string]any {
	return map[string]any{
		"id":        eventID,
		"content":   msg.Content,
		"ephemeral": msg.Ephemeral,
	}
}

// Reply implements interaction.Responder.
func (g *Gateway) Reply(ctx context.Context, eventID string, msg interaction.Message) error {
	return g.emit(ctx, EmitReply, messagePayload(eventID, msg))
}

// Defer implements interaction.Responder.
func (g *Gateway) Defer(ctx context.Context, eventID string, ephemeral bool) error {
	return g.emit(ctx, EmitDefer, map[string]any{"id": eventID, "ephemeral": ephemeral})
}

// FollowUp implements interaction.Responder.
func (g *Gateway) FollowUp(ctx context.Context, eventID string, msg interaction.Message) error {
	return g.emit(ctx, EmitFollowUp, messagePayload(eventID, msg))
}

// EditReply implements interaction.Responder.
func (g *Gateway) EditReply(ctx context.Context, eventID string, msg interaction.Message) error {
	return g.emit(ctx, EmitEdit, messagePayload(eventID, msg))
}

// SendMessage posts content to a channel.
func (g *Gateway) SendMessage(ctx context.Context, channelID, content string) error {
	return g.emit(ctx, EmitMessage, map[string]any{"channel_id": channelID, "content": content})
}
