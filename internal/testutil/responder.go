package testutil

import (
	"context"
	"sync"

	"github.com/vk/hookhost/internal/interaction"
)

// Response is a single call recorded by RecordingResponder.
type Response struct {
	Kind    string // reply, defer, followup, edit
	EventID string
	Message interaction.Message
}

// RecordingResponder is a thread-safe interaction.Responder that records
// every response it is asked to send.
type RecordingResponder struct {
	mu        sync.Mutex
	responses []Response
	Err       error
	// ReplyErr, when set, is returned by the next Reply and then cleared.
	ReplyErr error
}

func (r *RecordingResponder) record(kind, id string, msg interaction.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, Response{Kind: kind, EventID: id, Message: msg})
	return r.Err
}

func (r *RecordingResponder) Reply(_ context.Context, id string, msg interaction.Message) error {
	r.mu.Lock()
	err := r.ReplyErr
	r.ReplyErr = nil
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.record("reply", id, msg)
}

func (r *RecordingResponder) Defer(_ context.Context, id string, ephemeral bool) error {
	return r.record("defer", id, interaction.Message{Ephemeral: ephemeral})
}

func (r *RecordingResponder) FollowUp(_ context.Context, id string, msg interaction.Message) error {
	return r.record("followup", id, msg)
}

func (r *RecordingResponder) EditReply(_ context.Context, id string, msg interaction.Message) error {
	return r.record("edit", id, msg)
}

// Responses returns a copy of the recorded responses.
func (r *RecordingResponder) Responses() []Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Response(nil), r.responses...)
}

// ForEvent returns the recorded responses for one event.
func (r *RecordingResponder) ForEvent(id string) []Response {
	var out []Response
	for _, resp := range r.Responses() {
		if resp.EventID == id {
			out = append(out, resp)
		}
	}
	return out
}
