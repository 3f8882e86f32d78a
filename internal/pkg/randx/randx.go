/*
Package randx provides functions for generating cryptographically secure random
identifiers: invite codes, connection IDs, and avatar colors.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// CodeChars defines the character set used for the random part of invite codes.
	CodeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// CodeRandomLength is the fixed length of the random part of an invite code.
	CodeRandomLength = 6

	// CodePrefixLength is the fixed length of the type-derived code prefix.
	CodePrefixLength = 3
)

// codeRegex matches the invite code wire format, e.g. "USE-A1B2C3" or
// "ADMIN-777". Bootstrap codes carry longer prefixes and shorter suffixes
// than generated ones, so both lengths are ranges.
var codeRegex = regexp.MustCompile(`^[A-Z]{3,6}-[A-Z0-9]{3,6}$`)

// redPalette holds the avatar colors assigned at registration.
var redPalette = []string{
	"#FF0000", "#FF3333", "#FF6666", "#FF9999", "#FF4D4D",
	"#E60000", "#CC0000", "#B30000", "#990000", "#800000",
	"#FF1A1A", "#FF8080", "#FFB3B3", "#FFE6E6",
}

// InviteCode generates an invite code of the form PRE-XXXXXX, where the prefix
// is derived from the code type and the suffix is six random characters drawn
// from CodeChars using crypto/rand.
func InviteCode(codeType string) (string, error) {
	prefix := strings.ToUpper(codeType)
	prefix = regexp.MustCompile(`[^A-Z]`).ReplaceAllString(prefix, "")
	for len(prefix) < CodePrefixLength {
		prefix += "X"
	}
	prefix = prefix[:CodePrefixLength]

	result := make([]byte, CodeRandomLength)
	charsLen := big.NewInt(int64(len(CodeChars)))

	for i := range CodeRandomLength {
		num, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for invite code: %v", err)
		}
		result[i] = CodeChars[num.Int64()]
	}

	return prefix + "-" + string(result), nil
}

// IsValidInviteCode checks whether the given string matches the invite code format.
func IsValidInviteCode(code string) bool {
	return codeRegex.MatchString(code)
}

// ConnectionID generates a UUID v4 string identifying one transport session.
func ConnectionID() string {
	return uuid.New().String()
}

// AvatarColor picks a random color from the red palette. On entropy failure it
// falls back to the first palette entry.
func AvatarColor() string {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(redPalette))))
	if err != nil {
		return redPalette[0]
	}
	return redPalette[num.Int64()]
}
