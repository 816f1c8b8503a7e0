// Package voice connects a demo to the realtime voice assistant.
package voice

import (
	"context"
	"errors"
)

// Call event types.
const (
	EventCallStart = "call-start"
	EventCallEnd   = "call-end"
	EventError     = "error"
)

// Speaker roles on a transcript line.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

var (
	// ErrNotConfigured means no gateway or public key was provided.
	ErrNotConfigured = errors.New("voice gateway not configured")
	// ErrCallActive is returned when Start is called twice without Stop.
	ErrCallActive = errors.New("voice call already active")
)

// StartConfig selects the assistant for one call.
type StartConfig struct {
	AssistantID string
	Scenario    string
}

// CallEvent reports a change in call state. Err is set for EventError.
type CallEvent struct {
	Type string
	Err  error
}

// Transcript is one piece of recognized speech. Partial lines are
// replaced by later ones until a Final line arrives.
type Transcript struct {
	Role  string
	Text  string
	Final bool
}

// Client is a voice session that can run many calls one after another.
// The event channels live as long as the client.
type Client interface {
	Start(ctx context.Context, cfg StartConfig) error
	Stop() error
	CallEvents() <-chan CallEvent
	Transcripts() <-chan Transcript
	Close() error
}
