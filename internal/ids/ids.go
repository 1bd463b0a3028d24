// Package ids generates the stable, globally-unique identifiers the run
// loop hands out for sessions, turns, and approval requests.
package ids

import "github.com/google/uuid"

// NewSessionID generates a new session identifier.
func NewSessionID() string { return "session_" + uuid.NewString() }

// NewTurnID generates a new turn identifier.
func NewTurnID() string { return "turn_" + uuid.NewString() }

// NewRequestID generates a new approval request identifier.
func NewRequestID() string { return "req_" + uuid.NewString() }

// NewToolCallID generates an identifier for a synthetic tool call when the
// provider doesn't supply one (e.g. textual tool-call recognition).
func NewToolCallID() string { return "call_" + uuid.NewString() }
