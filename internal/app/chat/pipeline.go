package chat

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strings"
	"unicode/utf8"

	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/metrics"
)

// Pipeline takes a raw send attempt through validation, sanitization, the
// moderation gate, and persistence, and produces the payload to fan out.
type Pipeline struct {
	store Store
	gate  *Gate
}

// NewPipeline creates a message pipeline backed by the given store and gate.
func NewPipeline(store Store, gate *Gate) *Pipeline {
	return &Pipeline{store: store, gate: gate}
}

// Submit processes one send attempt for an authenticated user. On success the
// returned payload carries the persisted id, the server-assigned timestamp,
// the sanitized text, and the author's current profile. Nothing is fanned out
// here; broadcasting is the caller's job.
func (p *Pipeline) Submit(ctx context.Context, userID int64, rawText, msgType string) (*MessagePayload, *errs.CustomError) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		metrics.MessagesTotal.WithLabelValues("rejected_validation").Inc()
		return nil, errs.NewError(errs.ErrMessageEmpty)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		metrics.MessagesTotal.WithLabelValues("rejected_validation").Inc()
		return nil, errs.NewError(errs.ErrMessageTooLong, MaxMessageLength)
	}

	if msgType == "" {
		msgType = MessageTypeText
	}
	if msgType != MessageTypeText && msgType != MessageTypeMedia && msgType != MessageTypeSystem {
		metrics.MessagesTotal.WithLabelValues("rejected_validation").Inc()
		return nil, errs.NewError(errs.ErrMessageTypeInvalid)
	}

	verdict, gateErr := p.gate.CanSend(ctx, userID)
	if gateErr != nil {
		metrics.MessagesTotal.WithLabelValues("failed").Inc()
		return nil, gateErr
	}
	if !verdict.Allowed {
		metrics.MessagesTotal.WithLabelValues("rejected_moderation").Inc()
		return nil, &errs.CustomError{Code: verdict.Code, Message: verdict.Reason, Status: http.StatusOK}
	}

	// Sanitize after validation so length limits apply to what the user typed,
	// not the escaped form.
	text = html.EscapeString(text)

	id, createdAt, err := p.store.InsertMessage(ctx, userID, text, msgType)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("failed").Inc()
		logx.Error(err, "Failed to persist message", "user_id", userID)
		return nil, errs.NewError(errs.ErrStoreFailed)
	}

	author, err := p.store.GetUser(ctx, userID)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, ErrNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		logx.Error(err, "Failed to load message author", "user_id", userID)
		return nil, errs.NewError(errs.ErrStoreFailed)
	}

	// The message is already durable; a failed counter bump is not worth
	// failing the send over.
	if err := p.store.IncrementMessageCount(ctx, userID); err != nil {
		logx.Warn("Failed to increment message count", "user_id", userID, "error", err.Error())
	}

	metrics.MessagesTotal.WithLabelValues("sent").Inc()
	return &MessagePayload{
		ID:        id,
		Text:      text,
		Type:      msgType,
		User:      author.Profile(),
		Timestamp: createdAt,
	}, nil
}
