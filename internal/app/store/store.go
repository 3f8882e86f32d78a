/*
Package store implements PostgreSQL persistence for users, messages, invite
codes, audit events, and settings on top of a pgx connection pool.

This file holds the Store struct and the methods consumed by the real-time
core: user reads, presence writes, message persistence, and the stale
presence sweep.
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/app/user"
)

// Store is the PostgreSQL-backed persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// The real-time core depends on this exact surface.
var _ chat.Store = (*Store)(nil)

// New creates a store on top of an initialized connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, nickname, tg_username, role, avatar_color, status, bio,
	level, experience, message_count, is_verified, is_banned, muted_until,
	last_seen, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Nickname, &u.TgUsername, &u.Role, &u.AvatarColor, &u.Status,
		&u.Bio, &u.Level, &u.Experience, &u.MessageCount, &u.IsVerified,
		&u.IsBanned, &u.MutedUntil, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// GetUser returns the full user row, or chat.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// SetUserStatus updates the persisted presence hint and refreshes last_seen.
func (s *Store) SetUserStatus(ctx context.Context, id int64, status user.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET status = $2, last_seen = NOW(), updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// ClearMute removes the user's mute timestamp.
func (s *Store) ClearMute(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET muted_until = NULL, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("clear mute: %w", err)
	}
	return nil
}

// IncrementMessageCount bumps the author's message counter.
func (s *Store) IncrementMessageCount(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET message_count = message_count + 1, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment message count: %w", err)
	}
	return nil
}

// InsertMessage persists a message and returns its id and server timestamp.
func (s *Store) InsertMessage(ctx context.Context, userID int64, text, msgType string) (int64, time.Time, error) {
	var id int64
	var createdAt time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (user_id, text, type) VALUES ($1, $2, $3) RETURNING id, created_at`,
		userID, text, msgType,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("insert message: %w", err)
	}
	return id, createdAt, nil
}

// SweepStalePresence demotes online users whose last_seen is older than the
// threshold to away, in one batched statement.
func (s *Store) SweepStalePresence(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET status = 'away', updated_at = NOW()
		 WHERE status = 'online' AND last_seen IS NOT NULL AND last_seen < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep stale presence: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListRecentMessages returns the latest non-deleted messages with author
// profiles, oldest first.
func (s *Store) ListRecentMessages(ctx context.Context, limit int) ([]chat.MessagePayload, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.text, m.type, m.created_at,
		        u.id, u.nickname, u.avatar_color, u.role, u.status
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.deleted_at IS NULL
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.MessagePayload
	for rows.Next() {
		var m chat.MessagePayload
		if err := rows.Scan(
			&m.ID, &m.Text, &m.Type, &m.Timestamp,
			&m.User.ID, &m.User.Nickname, &m.User.AvatarColor, &m.User.Role, &m.User.Status,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}

	// Reverse into chronological order for the client.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// LogEvent records an audit event.
func (s *Store) LogEvent(ctx context.Context, userID int64, eventType, description string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (user_id, event_type, description) VALUES ($1, $2, $3)`,
		userID, eventType, description,
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// CreateUser inserts a new registered user and returns the full row.
func (s *Store) CreateUser(ctx context.Context, nickname, tgUsername string, role user.Role, avatarColor string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (nickname, tg_username, role, avatar_color, status)
		 VALUES ($1, $2, $3, $4, 'offline')
		 RETURNING `+userColumns,
		nickname, tgUsername, role, avatarColor,
	)
	return scanUser(row)
}

// ListUsers returns all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListOnlineUsers returns users whose persisted status is online or away.
// This view serves offline consumers; the live registry remains authoritative.
func (s *Store) ListOnlineUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE status IN ('online', 'away') ORDER BY last_seen DESC NULLS LAST`,
	)
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID, &u.Nickname, &u.TgUsername, &u.Role, &u.AvatarColor, &u.Status,
			&u.Bio, &u.Level, &u.Experience, &u.MessageCount, &u.IsVerified,
			&u.IsBanned, &u.MutedUntil, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect users: %w", err)
	}
	return users, nil
}
