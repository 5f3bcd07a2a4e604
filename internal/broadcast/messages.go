package broadcast

import (
	"encoding/json"
	"fmt"
)

// Socket.io event names.
const (
	EventSnapshot  = "registry:snapshot"
	EventChanged   = "variable:changed"
	EventSignalled = "event:signalled"
	EventSet       = "variable:set"
	EventSignal    = "event:signal"
	EventRejected  = "request:rejected"
)

// Change reports a variable's value after a notification.
type Change struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Value    string `json:"value"`
}

// Signal names an event, both when it fired and when a client fires it.
type Signal struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
}

// SetRequest asks the hub to assign the text-encoded Value to a variable.
type SetRequest struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// Ack acknowledges a set or signal request whose sender asked for one.
// Error is empty when the request was applied.
type Ack struct {
	Error string `json:"error,omitempty"`
}

// Rejection is sent back to a client whose failed request carried no
// acknowledgement callback.
type Rejection struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// DecodeArgs decodes the first socket.io argument into out. Arguments
// arrive as generic JSON values, so they are re-encoded and decoded into
// the typed struct.
func DecodeArgs(args []any, out any) error {
	if len(args) == 0 {
		return fmt.Errorf("missing payload")
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return fmt.Errorf("re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
