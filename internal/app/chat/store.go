package chat

import (
	"context"
	"errors"
	"time"

	"acaragraph/internal/app/user"
)

// ErrNotFound is returned by Store implementations when the referenced row
// does not exist.
var ErrNotFound = errors.New("chat: record not found")

// Store is the persistence surface consumed by the presence and messaging
// core. Moderation state is always read through GetUser at decision time,
// never cached, so concurrent admin actions take effect on the next check.
type Store interface {
	// GetUser returns the full user row, or ErrNotFound.
	GetUser(ctx context.Context, id int64) (*user.User, error)

	// SetUserStatus updates the persisted presence hint and refreshes last_seen.
	SetUserStatus(ctx context.Context, id int64, status user.Status) error

	// ClearMute removes an expired mute (write-through from the gate).
	ClearMute(ctx context.Context, id int64) error

	// IncrementMessageCount bumps the author's monotonic message counter.
	IncrementMessageCount(ctx context.Context, id int64) error

	// InsertMessage persists a message and returns its id and server-assigned timestamp.
	InsertMessage(ctx context.Context, userID int64, text, msgType string) (int64, time.Time, error)

	// SweepStalePresence demotes online rows whose last_seen is older than the
	// threshold to away, in a single batched write. Returns the demoted count.
	SweepStalePresence(ctx context.Context, olderThan time.Duration) (int64, error)

	// ListRecentMessages returns the latest non-deleted messages with their
	// author profiles, in chronological order.
	ListRecentMessages(ctx context.Context, limit int) ([]MessagePayload, error)

	// LogEvent records an audit event. Best effort; callers may ignore the error.
	LogEvent(ctx context.Context, userID int64, eventType, description string) error
}
