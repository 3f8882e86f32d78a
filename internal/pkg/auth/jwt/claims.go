package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by identity tokens.
// Tokens only identify the user; moderation state (ban/mute/role) is always
// read fresh from the store, never trusted from the token.
type Payload struct {
	// StandardClaims embeds Exp, Iat and Iss for validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the persisted user row id.
	UserID int64 `json:"user_id"`

	// Nickname is a display hint captured at issue time.
	Nickname string `json:"nickname"`

	// Role is the role at issue time; a hint only, re-read on privileged calls.
	Role string `json:"role"`
}
