package websocket

import "encoding/json"

const (
	actionConnect      = "connect"
	actionGameState    = "game:state"
	actionGameMove     = "game:move"
	actionGameJump     = "game:jump"
	actionCounterClick = "counter:click"
	actionError        = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request is the payload clients send; each action reads only the fields it needs.
type Request struct {
	SessionID string `json:"session_id,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
	Move      *int   `json:"move,omitempty"`
	Order     string `json:"order,omitempty"`
}
