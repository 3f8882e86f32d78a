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

// InviteCode is the persisted invite code row.
type InviteCode struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UsedBy    *int64     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	MaxUses   int        `json:"max_uses"`
	UsesCount int        `json:"uses_count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active"`
	Notes     string     `json:"notes,omitempty"`
}

// UsesLeft returns how many redemptions remain.
func (c *InviteCode) UsesLeft() int {
	left := c.MaxUses - c.UsesCount
	if left < 0 {
		return 0
	}
	return left
}

const inviteColumns = `id, code, type, created_by, created_at, used_by, used_at,
	max_uses, uses_count, expires_at, is_active, notes`

func scanInvite(row pgx.Row) (*InviteCode, error) {
	var c InviteCode
	err := row.Scan(
		&c.ID, &c.Code, &c.Type, &c.CreatedBy, &c.CreatedAt, &c.UsedBy,
		&c.UsedAt, &c.MaxUses, &c.UsesCount, &c.ExpiresAt, &c.IsActive, &c.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("scan invite code: %w", err)
	}
	return &c, nil
}

// GetActiveCode returns the invite code only when it is redeemable right now:
// active, not expired, with uses remaining. A known but exhausted code comes
// back as chat.ErrNotFound, indistinguishable from an unknown one.
func (s *Store) GetActiveCode(ctx context.Context, code string) (*InviteCode, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes
		 WHERE code = $1
		   AND is_active = TRUE
		   AND uses_count < max_uses
		   AND (expires_at IS NULL OR expires_at > NOW())`,
		code,
	)
	return scanInvite(row)
}

// ConsumeCode records one redemption of the code by the given user and
// deactivates the code when its last use is spent. The guard in the WHERE
// clause makes concurrent over-redemption lose the race.
func (s *Store) ConsumeCode(ctx context.Context, codeID, userID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE invite_codes
		 SET uses_count = uses_count + 1,
		     used_by = $2,
		     used_at = NOW(),
		     is_active = (uses_count + 1 < max_uses)
		 WHERE id = $1 AND is_active = TRUE AND uses_count < max_uses`,
		codeID, userID,
	)
	if err != nil {
		return fmt.Errorf("consume invite code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// RegisterWithCode creates a user and consumes one use of the invite code in
// a single transaction. When the code loses the redemption race the whole
// registration rolls back and chat.ErrNotFound is returned.
func (s *Store) RegisterWithCode(ctx context.Context, nickname, tgUsername string, role user.Role, avatarColor string, codeID int64) (*user.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`INSERT INTO users (nickname, tg_username, role, avatar_color, status)
		 VALUES ($1, $2, $3, $4, 'offline')
		 RETURNING `+userColumns,
		nickname, tgUsername, role, avatarColor,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE invite_codes
		 SET uses_count = uses_count + 1,
		     used_by = $2,
		     used_at = NOW(),
		     is_active = (uses_count + 1 < max_uses)
		 WHERE id = $1 AND is_active = TRUE AND uses_count < max_uses`,
		codeID, u.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("consume invite code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, chat.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}
	return u, nil
}

// CreateCode inserts a new invite code.
func (s *Store) CreateCode(ctx context.Context, code, codeType string, createdBy int64, maxUses int, expiresAt *time.Time, notes string) (*InviteCode, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO invite_codes (code, type, created_by, max_uses, expires_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+inviteColumns,
		code, codeType, createdBy, maxUses, expiresAt, notes,
	)
	return scanInvite(row)
}

// ListCodes returns all invite codes, newest first.
func (s *Store) ListCodes(ctx context.Context) ([]InviteCode, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	defer rows.Close()

	var codes []InviteCode
	for rows.Next() {
		var c InviteCode
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Type, &c.CreatedBy, &c.CreatedAt, &c.UsedBy,
			&c.UsedAt, &c.MaxUses, &c.UsesCount, &c.ExpiresAt, &c.IsActive, &c.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan invite code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	return codes, nil
}
