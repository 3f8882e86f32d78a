package errs

import (
	"net/http"
	"strings"
	"testing"
)

func TestNewError_KnownCode(t *testing.T) {
	err := NewError(ErrSendBanned)
	if err.Code != ErrSendBanned {
		t.Errorf("Code = %d, want %d", err.Code, ErrSendBanned)
	}
	if err.Status != http.StatusOK {
		t.Errorf("Status = %d, want default %d", err.Status, http.StatusOK)
	}
	if !strings.Contains(err.Message, "banned") {
		t.Errorf("Message = %q, want ban wording", err.Message)
	}
}

func TestNewError_TemplatedDetails(t *testing.T) {
	err := NewError(ErrSendMuted, 5)
	if err.Message != "You are muted. You can write again in 5 minutes." {
		t.Errorf("Message = %q", err.Message)
	}

	err = NewError(ErrMessageTooLong, 2000)
	if !strings.Contains(err.Message, "2000") {
		t.Errorf("Message = %q, want it to carry the limit", err.Message)
	}
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(99999)
	if err.Code != ErrUnknown {
		t.Errorf("Code = %d, want fallback %d", err.Code, ErrUnknown)
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", err.Status, http.StatusInternalServerError)
	}
}

func TestNewError_ExplicitStatusPreserved(t *testing.T) {
	err := NewError(ErrRateLimitExceeded)
	if err.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want %d", err.Status, http.StatusTooManyRequests)
	}
}

func TestIsModeration(t *testing.T) {
	if !NewError(ErrSendBanned).IsModeration() {
		t.Error("ban rejection not classified as moderation")
	}
	if !NewError(ErrSendMuted, 1).IsModeration() {
		t.Error("mute rejection not classified as moderation")
	}
	if NewError(ErrMessageEmpty).IsModeration() {
		t.Error("validation error classified as moderation")
	}
}

func TestErrorInterface(t *testing.T) {
	var err error = NewError(ErrUserNotFound)
	if !strings.Contains(err.Error(), "3004") {
		t.Errorf("Error() = %q, want it to carry the code", err.Error())
	}
}
