package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"acaragraph/internal/app/user"
)

func TestReconciler_SweepBroadcastsPresence(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada"})
	fs.sweepDemoted = 2
	h := NewHub(fs)
	conn := newFakeConn("c1")
	h.Attach(conn)
	h.Auth(context.Background(), "c1", 1)

	r := NewReconciler(fs, h, 0, 0)
	before := conn.frameCount()
	r.Sweep(context.Background())

	if fs.sweepCalls != 1 {
		t.Errorf("sweepCalls = %d, want 1", fs.sweepCalls)
	}
	if conn.frameCount() != before+1 {
		t.Errorf("frames after sweep = %d, want %d", conn.frameCount(), before+1)
	}
	presence, ok := conn.lastPresence()
	if !ok {
		t.Fatal("no presence frame after sweep")
	}
	if presence.Count != 1 {
		t.Errorf("presence count = %d, want live registry count 1", presence.Count)
	}
}

func TestReconciler_SweepErrorStillBroadcasts(t *testing.T) {
	fs := newFakeStore()
	fs.sweepErr = errors.New("connection reset")
	h := NewHub(fs)
	conn := newFakeConn("c1")
	h.Attach(conn)

	r := NewReconciler(fs, h, 0, 0)
	r.Sweep(context.Background())

	if _, ok := conn.lastPresence(); !ok {
		t.Error("no presence broadcast after failed sweep")
	}
}

func TestReconciler_Defaults(t *testing.T) {
	r := NewReconciler(newFakeStore(), NewHub(newFakeStore()), 0, -time.Second)
	if r.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want %v", r.interval, DefaultSweepInterval)
	}
	if r.threshold != DefaultStaleThreshold {
		t.Errorf("threshold = %v, want %v", r.threshold, DefaultStaleThreshold)
	}
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	fs := newFakeStore()
	h := NewHub(fs)
	r := NewReconciler(fs, h, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	fs.mu.Lock()
	calls := fs.sweepCalls
	fs.mu.Unlock()
	if calls == 0 {
		t.Error("no sweeps ran before cancel")
	}
}
