/*
Package chat implements two-party messaging: the conversation index kept in the
entity store, the messaging service that validates and appends messages, and the
realtime hub that pushes new messages to the participants' open connections.

This file defines the JSON frames exchanged over the websocket.
*/
package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/user"
)

// FrameType identifies the purpose of a websocket frame.
type FrameType string

const (
	// TypeReady is sent once after a connection is registered.
	TypeReady FrameType = "READY"

	// TypeNewMessage carries a message appended to one of the user's conversations.
	TypeNewMessage FrameType = "NEW_MESSAGE"

	// TypeConfirm acknowledges a SEND_MESSAGE frame by its tempId.
	TypeConfirm FrameType = "CONFIRM"

	// TypeError reports a failed client request.
	TypeError FrameType = "ERROR"

	// TypeTokenUpdate carries a refreshed session token.
	TypeTokenUpdate FrameType = "TOKEN_UPDATE"

	// TypeSendMessage is the only frame clients send.
	TypeSendMessage FrameType = "SEND_MESSAGE"
)

// Frame is the envelope of every server-sent websocket message.
type Frame struct {
	ID        string          `json:"id"`
	Type      FrameType       `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewFrame builds a frame with a fresh id and the current Unix millisecond time.
func NewFrame(frameType FrameType, payload any) (Frame, error) {
	frame := Frame{
		ID:        uuid.NewString(),
		Type:      frameType,
		Timestamp: time.Now().UnixMilli(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, err
		}
		frame.Payload = raw
	}

	return frame, nil
}

// ReadyPayload is sent with TypeReady.
type ReadyPayload struct {
	CurrentUser user.User `json:"currentUser"`
}

// NewMessagePayload is sent with TypeNewMessage.
type NewMessagePayload struct {
	ConversationID string         `json:"conversationId"`
	Message        entity.Message `json:"message"`
}

// ErrorPayload is sent with TypeError.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TokenUpdatePayload is sent with TypeTokenUpdate.
type TokenUpdatePayload struct {
	Token string `json:"token"`
}

// ConfirmPayload is sent with TypeConfirm.
type ConfirmPayload struct {
	TempID    string `json:"tempId"`
	MessageID string `json:"id"`
	Timestamp string `json:"timestamp"`
}

// SendMessagePayload is the payload of an inbound TypeSendMessage frame.
type SendMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
}
