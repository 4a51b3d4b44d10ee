// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vk/hookhost/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var (
	// ErrAlreadyResponded is returned when an initial response is attempted
	// for a request that already has one.
	ErrAlreadyResponded = errors.New("request already has an initial response")
	// ErrNotResponded is returned when a follow-up or edit is attempted
	// before any initial response.
	ErrNotResponded = errors.New("request has no initial response yet")
	// ErrOptionMissing is returned when a required option is absent.
	ErrOptionMissing = errors.New("required option missing")
)

// Status is the response status of a request.
type Status int32

const (
	NotStarted Status = iota
	Deferred
	Replied
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Deferred:
		return "deferred"
	case Replied:
		return "replied"
	default:
		return "unknown"
	}
}

// Request is a single inbound event being served by a command handler.
type Request struct {
	Event Event

	options   map[string]cty.Value
	responder Responder
	status    atomic.Int32
}

// NewRequest decodes the event's options against the declared option types
// of spec. Options the spec does not declare are ignored.
func NewRequest(ev Event, spec model.CommandSpec, responder Responder) (*Request, error) {
	r := &Request{
		Event:     ev,
		options:   make(map[string]cty.Value, len(spec.Options)),
		responder: responder,
	}

	for _, opt := range spec.Options {
		raw, ok := ev.Options[opt.Name]
		if !ok || raw == nil {
			if opt.Required {
				return nil, fmt.Errorf("%w: %s", ErrOptionMissing, opt.Name)
			}
			r.options[opt.Name] = cty.NullVal(opt.Type)
			continue
		}

		buf, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", opt.Name, err)
		}
		val, err := ctyjson.Unmarshal(buf, opt.Type)
		if err != nil {
			return nil, fmt.Errorf("option %s: expected %s: %w", opt.Name, opt.Type.FriendlyName(), err)
		}
		r.options[opt.Name] = val
	}

	return r, nil
}

// NewRawRequest wraps an event without decoding any options. It is used to
// answer events whose options could not be decoded.
func NewRawRequest(ev Event, responder Responder) *Request {
	return &Request{Event: ev, options: map[string]cty.Value{}, responder: responder}
}

// Status returns the current response status.
func (r *Request) Status() Status {
	return Status(r.status.Load())
}

// Option returns the decoded value of an option, or cty.NilVal if the
// command does not declare it.
func (r *Request) Option(name string) cty.Value {
	if v, ok := r.options[name]; ok {
		return v
	}
	return cty.NilVal
}

// String returns a string option. ok is false when the option is absent.
func (r *Request) String(name string) (string, bool) {
	var s string
	return s, r.decode(name, &s)
}

// Bool returns a bool option. ok is false when the option is absent.
func (r *Request) Bool(name string) (bool, bool) {
	var b bool
	return b, r.decode(name, &b)
}

// Int returns a whole-number option. ok is false when the option is absent
// or not a whole number.
func (r *Request) Int(name string) (int64, bool) {
	var n int64
	return n, r.decode(name, &n)
}

func (r *Request) decode(name string, target any) bool {
	v := r.Option(name)
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false
	}
	return gocty.FromCtyValue(v, target) == nil
}

// Reply sends the initial response. If the responder fails the request is
// back to NotStarted, so a later Fail still sends an initial reply.
func (r *Request) Reply(ctx context.Context, msg Message) error {
	if !r.status.CompareAndSwap(int32(NotStarted), int32(Replied)) {
		return ErrAlreadyResponded
	}
	return r.settle(Replied, r.responder.Reply(ctx, r.Event.ID, msg))
}

// Defer acknowledges the request without content; the answer follows with
// EditReply or FollowUp.
func (r *Request) Defer(ctx context.Context, ephemeral bool) error {
	if !r.status.CompareAndSwap(int32(NotStarted), int32(Deferred)) {
		return ErrAlreadyResponded
	}
	return r.settle(Deferred, r.responder.Defer(ctx, r.Event.ID, ephemeral))
}

// settle rolls the status back to NotStarted when the initial response
// claimed as s was not delivered.
func (r *Request) settle(s Status, err error) error {
	if err != nil {
		r.status.CompareAndSwap(int32(s), int32(NotStarted))
	}
	return err
}

// EditReply replaces the content of the initial response.
func (r *Request) EditReply(ctx context.Context, msg Message) error {
	if r.Status() == NotStarted {
		return ErrNotResponded
	}
	return r.responder.EditReply(ctx, r.Event.ID, msg)
}

// FollowUp sends an additional message after the initial response.
func (r *Request) FollowUp(ctx context.Context, msg Message) error {
	if r.Status() == NotStarted {
		return ErrNotResponded
	}
	return r.responder.FollowUp(ctx, r.Event.ID, msg)
}

// Fail sends exactly one ephemeral failure message: the initial reply if
// nothing was sent yet, a follow-up otherwise.
func (r *Request) Fail(ctx context.Context, content string) error {
	msg := Message{Content: content, Ephemeral: true}
	if r.status.CompareAndSwap(int32(NotStarted), int32(Replied)) {
		return r.settle(Replied, r.responder.Reply(ctx, r.Event.ID, msg))
	}
	return r.responder.FollowUp(ctx, r.Event.ID, msg)
}
