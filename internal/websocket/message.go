package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleTime handles both Unix millisecond timestamps and RFC3339 strings
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	// Try to unmarshal as Unix milliseconds (integer)
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		ft.Time = time.UnixMilli(ms)
		return nil
	}

	// Fall back to RFC3339 string format
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("timestamp must be Unix milliseconds (integer) or RFC3339 string")
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// MarshalJSON implements custom marshaling (always output as RFC3339)
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time)
}

// Message types for WebSocket communication
const (
	// System messages
	MessageTypeSystem = "system"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
	MessageTypeError  = "error"
	MessageTypeAuth   = "auth"

	// Direct message events (client to server)
	MessageTypeSendMessage      = "send_message"
	MessageTypeEditMessage      = "edit_message"
	MessageTypeDeleteMessage    = "delete_message"
	MessageTypeMarkMessagesRead = "mark_messages_read"

	// Direct message events (server to client)
	MessageTypeReceiveMessage     = "receive_message"
	MessageTypeMessageUpdated     = "message_updated"
	MessageTypeMessageDeleted     = "message_deleted"
	MessageTypeMessagesRead       = "messages_read"
	MessageTypeMessagesMarkedRead = "messages_marked_read"

	// Notification and presence events (server to client)
	MessageTypeNewNotification = "new_notification"
	MessageTypeUserStatus      = "user_status"
)

// Message represents a WebSocket message
type Message struct {
	// Type identifies the message type for routing
	Type string `json:"type"`

	// Payload contains the message-specific data
	Payload interface{} `json:"payload,omitempty"`

	// ID is a unique message identifier for acknowledgment
	ID string `json:"id,omitempty"`

	// ReplyTo references the original message ID for responses
	ReplyTo string `json:"reply_to,omitempty"`

	// Timestamp when the message was created (accepts Unix ms or RFC3339)
	Timestamp FlexibleTime `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewReply creates a reply message to an original message
func NewReply(original *Message, msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		ReplyTo:   original.ID,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(message string, details string) *Message {
	return &Message{
		Type: MessageTypeError,
		Payload: ErrorPayload{
			Message: message,
			Details: details,
		},
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// ErrorPayload is emitted back to the originating connection only
type ErrorPayload struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PingPayload represents a ping message payload
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload represents a pong message payload
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

// AuthPayload represents authentication message payload
type AuthPayload struct {
	Token  string `json:"token,omitempty"`
	UserID uint   `json:"userId,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SendMessagePayload asks the server to deliver a direct message
type SendMessagePayload struct {
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content"`
}

// EditMessagePayload rewrites the content of a previously sent message
type EditMessagePayload struct {
	MessageID uint   `json:"messageId"`
	Content   string `json:"content"`
}

// DeleteMessagePayload removes a previously sent message
type DeleteMessagePayload struct {
	MessageID uint `json:"messageId"`
}

// MarkMessagesReadPayload marks every unread message from a sender as read
type MarkMessagesReadPayload struct {
	SenderID uint `json:"senderId"`
}

// MessagesReadPayload tells a sender their messages were read
type MessagesReadPayload struct {
	ByUserID uint `json:"byUserId"`
}

// MessagesMarkedReadPayload confirms a mark-read request to the reader
type MessagesMarkedReadPayload struct {
	SenderID uint `json:"senderId"`
}

// MessageDeletedPayload announces a deleted message to both parties
type MessageDeletedPayload struct {
	MessageID uint `json:"messageId"`
}

// NotificationPayload is pushed to a user's live connection
type NotificationPayload struct {
	Type         string `json:"type"`
	FromUserID   uint   `json:"fromUserId"`
	FromUsername string `json:"fromUsername"`
	PostID       *uint  `json:"postId"`
	Message      string `json:"message"`
}

// UserStatusPayload announces online/offline transitions to everyone
type UserStatusPayload struct {
	UserID uint `json:"userId"`
	Online bool `json:"online"`
}

// SystemPayload represents system event payloads
type SystemPayload struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// ParsePayload unmarshals the payload into a specific type
func (m *Message) ParsePayload(target interface{}) error {
	if m.Payload == nil {
		return nil
	}

	// Re-marshal and unmarshal to properly type the payload
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
