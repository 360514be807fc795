package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Server to Client
	MessageTypeConnected          MessageType = "CONNECTED"
	MessageTypeApplicationChanged MessageType = "APPLICATION_CHANGED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type ConnectedPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// ApplicationChangedPayload tells the dashboard which application to refetch.
type ApplicationChangedPayload struct {
	ApplicationID uuid.UUID `json:"applicationId"`
	Change        string    `json:"change"`
}
