package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"acaragraph/internal/app/user"
	"acaragraph/internal/pkg/errs"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGate_AllowsCleanUser(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada"})
	g := NewGate(fs, nil)

	verdict, err := g.CanSend(context.Background(), 1)
	if err != nil {
		t.Fatalf("CanSend returned error: %v", err)
	}
	if !verdict.Allowed {
		t.Fatalf("verdict.Allowed = false, want true (reason=%q)", verdict.Reason)
	}
}

func TestGate_DeniesBanned(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada", IsBanned: true})
	g := NewGate(fs, nil)

	verdict, err := g.CanSend(context.Background(), 1)
	if err != nil {
		t.Fatalf("CanSend returned error: %v", err)
	}
	if verdict.Allowed {
		t.Fatal("banned user was allowed to send")
	}
	if verdict.Code != errs.ErrSendBanned {
		t.Errorf("verdict.Code = %d, want %d", verdict.Code, errs.ErrSendBanned)
	}
	if !strings.Contains(verdict.Reason, "banned") {
		t.Errorf("verdict.Reason = %q, want it to mention the ban", verdict.Reason)
	}
	if len(fs.events) != 1 || fs.events[0] != "send_denied_banned" {
		t.Errorf("audit events = %v, want one send_denied_banned entry", fs.events)
	}
}

func TestGate_BanWinsOverMute(t *testing.T) {
	until := time.Now().Add(time.Hour)
	fs := newFakeStore(&user.User{ID: 1, IsBanned: true, MutedUntil: &until})
	g := NewGate(fs, nil)

	verdict, err := g.CanSend(context.Background(), 1)
	if err != nil {
		t.Fatalf("CanSend returned error: %v", err)
	}
	if verdict.Code != errs.ErrSendBanned {
		t.Errorf("verdict.Code = %d, want ban code %d", verdict.Code, errs.ErrSendBanned)
	}
}

func TestGate_MutedReasonCeilsMinutes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"exactly five minutes", 5 * time.Minute, "5 minutes"},
		{"partial minute rounds up", 4*time.Minute + 30*time.Second, "5 minutes"},
		{"just over a minute", 61 * time.Second, "2 minutes"},
		{"under a minute", 30 * time.Second, "1 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			until := now.Add(tt.remaining)
			fs := newFakeStore(&user.User{ID: 1, MutedUntil: &until})
			g := NewGate(fs, fixedNow(now))

			verdict, err := g.CanSend(context.Background(), 1)
			if err != nil {
				t.Fatalf("CanSend returned error: %v", err)
			}
			if verdict.Allowed {
				t.Fatal("muted user was allowed to send")
			}
			if verdict.Code != errs.ErrSendMuted {
				t.Errorf("verdict.Code = %d, want %d", verdict.Code, errs.ErrSendMuted)
			}
			if !strings.Contains(verdict.Reason, tt.want) {
				t.Errorf("verdict.Reason = %q, want it to contain %q", verdict.Reason, tt.want)
			}
		})
	}
}

func TestGate_MuteReasonDecreasesOverTime(t *testing.T) {
	until := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	fs := newFakeStore(&user.User{ID: 1, MutedUntil: &until})

	early := NewGate(fs, fixedNow(until.Add(-10*time.Minute)))
	late := NewGate(fs, fixedNow(until.Add(-3*time.Minute)))

	earlyVerdict, _ := early.CanSend(context.Background(), 1)
	lateVerdict, _ := late.CanSend(context.Background(), 1)

	if !strings.Contains(earlyVerdict.Reason, "10 minutes") {
		t.Errorf("early reason = %q, want 10 minutes", earlyVerdict.Reason)
	}
	if !strings.Contains(lateVerdict.Reason, "3 minutes") {
		t.Errorf("late reason = %q, want 3 minutes", lateVerdict.Reason)
	}
}

func TestGate_ClearsExpiredMute(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(-time.Second)
	fs := newFakeStore(&user.User{ID: 1, MutedUntil: &until})
	g := NewGate(fs, fixedNow(now))

	verdict, err := g.CanSend(context.Background(), 1)
	if err != nil {
		t.Fatalf("CanSend returned error: %v", err)
	}
	if !verdict.Allowed {
		t.Fatalf("expired mute still denied: %q", verdict.Reason)
	}
	if len(fs.clearedMutes) != 1 || fs.clearedMutes[0] != 1 {
		t.Errorf("clearedMutes = %v, want [1]", fs.clearedMutes)
	}
	if fs.users[1].MutedUntil != nil {
		t.Error("mute was not written back as cleared")
	}
}

func TestGate_ClearMuteFailureStillAllows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(-time.Minute)
	fs := newFakeStore(&user.User{ID: 1, MutedUntil: &until})
	fs.clearMuteErr = errors.New("connection reset")
	g := NewGate(fs, fixedNow(now))

	verdict, err := g.CanSend(context.Background(), 1)
	if err != nil {
		t.Fatalf("CanSend returned error: %v", err)
	}
	if !verdict.Allowed {
		t.Fatalf("send denied on clear-mute failure: %q", verdict.Reason)
	}
}

func TestGate_UnknownUser(t *testing.T) {
	g := NewGate(newFakeStore(), nil)

	_, err := g.CanSend(context.Background(), 42)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	if err.Code != errs.ErrUserNotFound {
		t.Errorf("err.Code = %d, want %d", err.Code, errs.ErrUserNotFound)
	}
}

func TestGate_StoreFailure(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1})
	fs.getUserErr = errors.New("connection refused")
	g := NewGate(fs, nil)

	_, err := g.CanSend(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error on store failure")
	}
	if err.Code != errs.ErrStoreFailed {
		t.Errorf("err.Code = %d, want %d", err.Code, errs.ErrStoreFailed)
	}
}
