/*
Package chat contains the presence and messaging core: the moderation gate,
the live-session registry (hub), the message pipeline, and the presence
reconciler.

This file defines the WebSocket wire protocol: JSON envelopes of the form
{"type": ..., "payload": ...} and the payload structures for both directions.
*/
package chat

import (
	"encoding/json"
	"time"

	"acaragraph/internal/app/user"
)

// EventType identifies a wire protocol event.
type EventType string

// Inbound events (client to server).
const (
	EventAuth        EventType = "auth"
	EventGetMessages EventType = "get_messages"
	EventSendMessage EventType = "send_message"
	EventTyping      EventType = "typing"
)

// Outbound events (server to client).
const (
	EventOnlineUsers EventType = "online_users_update"
	EventNewMessage  EventType = "new_message"
	EventHistory     EventType = "messages_history"
	EventUserTyping  EventType = "user_typing"
	EventAdminAction EventType = "admin_action"
	EventError       EventType = "error"
)

// Message types stored alongside chat entries.
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
	MessageTypeMedia  = "media"
)

// MaxMessageLength is the maximum number of characters in a chat message after trimming.
const MaxMessageLength = 2000

// Event is the wire envelope relayed between the core and connected clients.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// Marshal encodes the event for transport.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// PresencePayload carries the flat list of live sessions' public profiles.
// One entry per connection: multiple sessions of the same user appear multiple times.
type PresencePayload struct {
	Users []user.Profile `json:"users"`
	Count int            `json:"count"`
}

// MessagePayload is the fan-out payload of a persisted chat message.
// ID and Timestamp are immutable once fanned out.
type MessagePayload struct {
	ID        int64        `json:"id"`
	Text      string       `json:"text"`
	Type      string       `json:"type"`
	User      user.Profile `json:"user"`
	Timestamp time.Time    `json:"timestamp"`
}

// TypingPayload announces that a user is composing a message.
type TypingPayload struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

// AdminActionPayload notifies live connections about a moderation change so
// clients can refresh the affected user's state.
type AdminActionPayload struct {
	UserID    int64     `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	ByAdminID int64     `json:"byAdminId"`
}

// ErrorPayload carries a user-facing failure reason to one connection.
type ErrorPayload struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}
