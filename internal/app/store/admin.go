package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/app/user"
)

// SetBanned flips the user's ban flag.
func (s *Store) SetBanned(ctx context.Context, id int64, banned bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET is_banned = $2, updated_at = NOW() WHERE id = $1`,
		id, banned,
	)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// SetMutedUntil sets or clears the user's mute deadline.
func (s *Store) SetMutedUntil(ctx context.Context, id int64, until *time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET muted_until = $2, updated_at = NOW() WHERE id = $1`,
		id, until,
	)
	if err != nil {
		return fmt.Errorf("set muted until: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// SetRole changes the user's permission tier.
func (s *Store) SetRole(ctx context.Context, id int64, role user.Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		id, role,
	)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// Stats is a snapshot of aggregate counters for the admin dashboard.
type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	BannedUsers   int64 `json:"banned_users"`
	TotalMessages int64 `json:"total_messages"`
	ActiveCodes   int64 `json:"active_codes"`
	OnlineUsers   int64 `json:"online_users"`
}

// GetStats collects aggregate counters in one round trip.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM users WHERE is_banned),
		   (SELECT COUNT(*) FROM messages WHERE deleted_at IS NULL),
		   (SELECT COUNT(*) FROM invite_codes WHERE is_active),
		   (SELECT COUNT(*) FROM users WHERE status = 'online')`,
	).Scan(&st.TotalUsers, &st.BannedUsers, &st.TotalMessages, &st.ActiveCodes, &st.OnlineUsers)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}

// GetSetting returns the value of a named setting, or chat.ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", chat.ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting upserts a named setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
