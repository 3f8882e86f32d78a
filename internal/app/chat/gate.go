package chat

import (
	"context"
	"errors"
	"math"
	"time"

	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
)

// Verdict is the moderation gate's decision for one send attempt. When the
// attempt is denied, Code and Reason carry the user-facing rejection.
type Verdict struct {
	Allowed bool
	Code    int
	Reason  string
}

// Gate decides whether a user may post right now. It reads moderation state
// from the store on every call; nothing is cached between checks.
type Gate struct {
	store Store
	now   func() time.Time
}

// NewGate creates a moderation gate. The now function may be nil, in which
// case time.Now is used.
func NewGate(store Store, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{store: store, now: now}
}

// CanSend checks the user's ban and mute state. Bans always win over mutes.
// An expired mute is cleared in the store on the way through; a failure to
// clear it does not block the send.
func (g *Gate) CanSend(ctx context.Context, userID int64) (Verdict, *errs.CustomError) {
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Verdict{}, errs.NewError(errs.ErrUserNotFound)
		}
		logx.Error(err, "Gate failed to load user", "user_id", userID)
		return Verdict{}, errs.NewError(errs.ErrStoreFailed)
	}

	if u.IsBanned {
		if logErr := g.store.LogEvent(ctx, userID, "send_denied_banned", "banned user attempted to send a message"); logErr != nil {
			logx.Warn("Failed to record audit event", "user_id", userID, "error", logErr.Error())
		}
		denied := errs.NewError(errs.ErrSendBanned)
		return Verdict{Allowed: false, Code: denied.Code, Reason: denied.Message}, nil
	}

	if u.MutedUntil != nil {
		now := g.now()
		if u.MutedUntil.After(now) {
			minutes := int(math.Ceil(u.MutedUntil.Sub(now).Minutes()))
			denied := errs.NewError(errs.ErrSendMuted, minutes)
			return Verdict{Allowed: false, Code: denied.Code, Reason: denied.Message}, nil
		}

		// Mute has lapsed: write the cleared state back so later reads agree.
		if clearErr := g.store.ClearMute(ctx, userID); clearErr != nil {
			logx.Warn("Failed to clear expired mute", "user_id", userID, "error", clearErr.Error())
		}
	}

	return Verdict{Allowed: true}, nil
}
