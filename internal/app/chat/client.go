/*
This file defines the Client struct, representing one active WebSocket
connection. It manages the connection lifecycle, the read and write pumps,
and dispatch of inbound events to the hub and the message pipeline.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 16384

	// number of messages fetched for a history request.
	historyLimit = 100
)

// Client wraps one WebSocket connection. It implements the Conn interface
// consumed by the hub.
type Client struct {
	hub      *Hub
	pipeline *Pipeline
	store    Store

	conn *websocket.Conn
	id   string

	// buffered outbound queue; frames are dropped when it is full.
	send chan []byte

	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool

	logger zerolog.Logger
}

// NewClient constructs a client for an upgraded connection. The caller is
// expected to Attach it to the hub and start both pumps.
func NewClient(hub *Hub, pipeline *Pipeline, store Store, wsConn *websocket.Conn, connID string) *Client {
	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Logger()

	return &Client{
		hub:      hub,
		pipeline: pipeline,
		store:    store,
		conn:     wsConn,
		id:       connID,
		send:     make(chan []byte, 256),
		logger:   clientLogger,
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// Enqueue queues a frame for delivery without blocking. Returns false when
// the client is closed or its buffer is full.
func (c *Client) Enqueue(data []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue. The write pump drains and then sends a
// close frame. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closeMu.Lock()
		c.closed = true
		c.closeMu.Unlock()
		close(c.send)
	})
}

// ReadPump handles reading events from the WebSocket connection.
// It handles heartbeats (Pong), event parsing, and cleanup on close.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect handles the cleanup steps when the ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Disconnect(context.Background(), c.id)
	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent parses one raw frame and dispatches it by event type.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var inbound struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case EventAuth:
		c.handleAuth(inbound.Payload)

	case EventGetMessages:
		c.handleGetMessages()

	case EventSendMessage:
		c.handleSendMessage(inbound.Payload)

	case EventTyping:
		c.handleTyping()

	default:
		c.logger.Warn().Str("event_type", string(inbound.Type)).Msg("Client sent unsupported event type")
	}
}

// handleAuth binds the connection to a user identity.
func (c *Client) handleAuth(payloadBytes json.RawMessage) {
	var authPayload struct {
		ID     int64 `json:"id"`
		UserID int64 `json:"userId"`
	}
	if err := json.Unmarshal(payloadBytes, &authPayload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid auth payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	userID := authPayload.ID
	if userID == 0 {
		userID = authPayload.UserID
	}
	if userID == 0 {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if _, err := c.hub.Auth(context.Background(), c.id, userID); err != nil {
		c.SendError(err)
	}
}

// handleGetMessages replies with the recent message history.
func (c *Client) handleGetMessages() {
	messages, err := c.store.ListRecentMessages(context.Background(), historyLimit)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to load message history")
		c.SendError(errs.NewError(errs.ErrStoreFailed))
		return
	}

	c.sendEvent(Event{Type: EventHistory, Payload: messages})
}

// handleSendMessage runs a send attempt through the pipeline and fans the
// persisted message out. The author identity always comes from the session,
// never from the payload.
func (c *Client) handleSendMessage(payloadBytes json.RawMessage) {
	sess, ok := c.hub.SessionFor(c.id)
	if !ok {
		c.SendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	var msgPayload struct {
		Text string `json:"text"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payloadBytes, &msgPayload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid send_message payload")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	message, submitErr := c.pipeline.Submit(context.Background(), sess.UserID, msgPayload.Text, msgPayload.Type)
	if submitErr != nil {
		c.SendError(submitErr)
		return
	}

	c.hub.Broadcast(Event{Type: EventNewMessage, Payload: message})
}

// handleTyping relays a typing notification to everyone but the sender.
func (c *Client) handleTyping() {
	sess, ok := c.hub.SessionFor(c.id)
	if !ok {
		return
	}

	c.hub.BroadcastExcept(c.id, Event{
		Type: EventUserTyping,
		Payload: TypingPayload{
			UserID:   sess.UserID,
			Nickname: sess.Profile.Nickname,
		},
	})
}

// WritePump handles writing frames from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedFrame(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns true if the WritePump loop should continue.
func (c *Client) writeQueuedFrame(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping to maintain the heartbeat.
// Returns false if the WritePump loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendEvent marshals the event and queues it on this connection.
func (c *Client) sendEvent(evt Event) {
	data, err := evt.Marshal()
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling event for client")
		return
	}

	if !c.Enqueue(data) {
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
	}
}

// SendError queues an error event carrying the user-facing reason.
func (c *Client) SendError(err *errs.CustomError) {
	c.sendEvent(Event{
		Type: EventError,
		Payload: ErrorPayload{
			Code:    err.Code,
			Message: err.Message,
		},
	})
}
