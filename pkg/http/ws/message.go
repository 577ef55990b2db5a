package ws

import "encoding/json"

// MessageType constants for the session WebSocket protocol.
const (
	// Client -> Server
	TypeCommand         = "command"
	TypeRequestDocument = "request_document"
	TypePing            = "ping"

	// Server -> Client
	TypeDocumentUpdate = "document_update"
	TypeCommandAck     = "command_ack"
	TypeSessionEnded   = "session_ended"
	TypeError          = "error"
	TypePong           = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed Message.
func NewMessage(msgType string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// DocumentUpdatePayload is pushed after every dispatched command and on
// connect (Command empty).
type DocumentUpdatePayload struct {
	Command  string          `json:"command,omitempty"`
	Applied  bool            `json:"applied"`
	Document json.RawMessage `json:"document"`
}

type CommandAckPayload struct {
	Command string `json:"command"`
}

type SessionEndedPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

type ErrorPayload struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}
