/*
Package user contains core data structures related to user identity and moderation state.

It defines the persisted representation of a chat participant (the User struct) and the
trimmed-down public Profile used in presence broadcasts and message fan-out.
*/
package user

import "time"

// Role defines the permission tier of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleGuest      Role = "guest"
)

// Status is the persisted presence hint. It is advisory: the live registry
// is the source of truth for who is actually connected.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

// User is the full persisted user row, including moderation state.
type User struct {
	ID           int64      `json:"id"`
	Nickname     string     `json:"nickname"`
	TgUsername   string     `json:"tg_username"`
	Role         Role       `json:"role"`
	AvatarColor  string     `json:"avatar_color"`
	Status       Status     `json:"status"`
	Bio          string     `json:"bio,omitempty"`
	Level        int        `json:"level"`
	Experience   int        `json:"experience"`
	MessageCount int64      `json:"message_count"`
	IsVerified   bool       `json:"is_verified"`
	IsBanned     bool       `json:"is_banned"`
	MutedUntil   *time.Time `json:"muted_until,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Profile is the public subset of a user row that travels over the wire in
// presence snapshots and message payloads.
type Profile struct {
	ID          int64  `json:"id"`
	Nickname    string `json:"nickname"`
	AvatarColor string `json:"avatar_color"`
	Role        Role   `json:"role"`
	Status      Status `json:"status"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	status := u.Status
	if status == "" {
		status = StatusOffline
	}
	return Profile{
		ID:          u.ID,
		Nickname:    u.Nickname,
		AvatarColor: u.AvatarColor,
		Role:        role,
		Status:      status,
	}
}

// IsAdmin reports whether the user holds admin or super_admin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// MutedAt reports whether the user's mute is still in effect at the given instant.
func (u *User) MutedAt(now time.Time) bool {
	return u.MutedUntil != nil && u.MutedUntil.After(now)
}

// ValidStatus reports whether s is one of the three persisted presence values.
func ValidStatus(s Status) bool {
	return s == StatusOnline || s == StatusAway || s == StatusOffline
}

// RoleForCodeType maps an invite code type to the role granted at registration.
// Unknown code types fall back to the plain user role.
func RoleForCodeType(codeType string) Role {
	switch Role(codeType) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	case RoleGuest:
		return RoleGuest
	default:
		return RoleUser
	}
}
