package randx

import (
	"strings"
	"testing"
)

func TestInviteCodeFormat(t *testing.T) {
	tests := []struct {
		codeType   string
		wantPrefix string
	}{
		{"user", "USE-"},
		{"admin", "ADM-"},
		{"super_admin", "SUP-"},
		{"guest", "GUE-"},
		{"x", "XXX-"},
	}

	for _, tt := range tests {
		t.Run(tt.codeType, func(t *testing.T) {
			code, err := InviteCode(tt.codeType)
			if err != nil {
				t.Fatalf("InviteCode(%q) error: %v", tt.codeType, err)
			}
			if !strings.HasPrefix(code, tt.wantPrefix) {
				t.Errorf("InviteCode(%q) = %q, want prefix %q", tt.codeType, code, tt.wantPrefix)
			}
			if !IsValidInviteCode(code) {
				t.Errorf("generated code %q fails its own format check", code)
			}
		})
	}
}

func TestIsValidInviteCode(t *testing.T) {
	valid := []string{"USE-A1B2C3", "ADM-9XY0QK", "ADMIN-777", "USER-123", "SUPER-001", "GUEST-999"}
	for _, code := range valid {
		if !IsValidInviteCode(code) {
			t.Errorf("IsValidInviteCode(%q) = false, want true", code)
		}
	}

	invalid := []string{"", "use-a1b2c3", "USE_A1B2C3", "US-ABC123", "TOOLONG-ABC123", "USE-abc123", "USE-A1B2C3D4", "USE-A1"}
	for _, code := range invalid {
		if IsValidInviteCode(code) {
			t.Errorf("IsValidInviteCode(%q) = true, want false", code)
		}
	}
}

func TestConnectionIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id := ConnectionID()
		if id == "" {
			t.Fatal("empty connection id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate connection id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestAvatarColorFromPalette(t *testing.T) {
	palette := make(map[string]struct{}, len(redPalette))
	for _, c := range redPalette {
		palette[c] = struct{}{}
	}

	for range 50 {
		color := AvatarColor()
		if _, ok := palette[color]; !ok {
			t.Fatalf("AvatarColor() = %q, not in palette", color)
		}
	}
}
