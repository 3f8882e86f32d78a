package chat

import (
	"context"
	"testing"

	"acaragraph/internal/app/user"
	"acaragraph/internal/pkg/errs"
)

func TestHub_AuthAddsSession(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada", Status: user.StatusOffline})
	h := NewHub(fs)
	conn := newFakeConn("c1")
	h.Attach(conn)

	sess, err := h.Auth(context.Background(), "c1", 1)
	if err != nil {
		t.Fatalf("Auth returned error: %v", err)
	}
	if sess.UserID != 1 || sess.ConnID != "c1" {
		t.Errorf("session = %+v, want user 1 on c1", sess)
	}
	if sess.Profile.Status != user.StatusOnline {
		t.Errorf("session status = %q, want online", sess.Profile.Status)
	}

	writes := fs.statusHistory()
	if len(writes) != 1 || writes[0].status != user.StatusOnline {
		t.Errorf("status writes = %v, want one online write", writes)
	}

	presence, ok := conn.lastPresence()
	if !ok {
		t.Fatal("no presence broadcast after auth")
	}
	if presence.Count != 1 || len(presence.Users) != 1 {
		t.Errorf("presence = %+v, want exactly one session", presence)
	}
}

func TestHub_SnapshotAdmissionOrder(t *testing.T) {
	fs := newFakeStore(
		&user.User{ID: 1, Nickname: "first"},
		&user.User{ID: 2, Nickname: "second"},
		&user.User{ID: 3, Nickname: "third"},
	)
	h := NewHub(fs)
	for _, id := range []string{"c1", "c2", "c3"} {
		h.Attach(newFakeConn(id))
	}

	h.Auth(context.Background(), "c1", 1)
	h.Auth(context.Background(), "c2", 2)
	h.Auth(context.Background(), "c3", 3)

	snapshot := h.Snapshot()
	want := []string{"first", "second", "third"}
	if len(snapshot) != len(want) {
		t.Fatalf("snapshot size = %d, want %d", len(snapshot), len(want))
	}
	for i, nickname := range want {
		if snapshot[i].Nickname != nickname {
			t.Errorf("snapshot[%d] = %q, want %q", i, snapshot[i].Nickname, nickname)
		}
	}
}

func TestHub_ReauthKeepsPosition(t *testing.T) {
	fs := newFakeStore(
		&user.User{ID: 1, Nickname: "ada"},
		&user.User{ID: 2, Nickname: "grace"},
		&user.User{ID: 3, Nickname: "joan"},
	)
	h := NewHub(fs)
	h.Attach(newFakeConn("c1"))
	h.Attach(newFakeConn("c2"))

	h.Auth(context.Background(), "c1", 1)
	h.Auth(context.Background(), "c2", 2)

	// Rebind the first connection to a different user; last auth wins.
	h.Auth(context.Background(), "c1", 3)

	snapshot := h.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snapshot))
	}
	if snapshot[0].Nickname != "joan" {
		t.Errorf("snapshot[0] = %q, want rebound identity in original position", snapshot[0].Nickname)
	}
	if snapshot[1].Nickname != "grace" {
		t.Errorf("snapshot[1] = %q, want %q", snapshot[1].Nickname, "grace")
	}
}

func TestHub_SameUserTwoConnections(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada"})
	h := NewHub(fs)
	h.Attach(newFakeConn("c1"))
	h.Attach(newFakeConn("c2"))

	h.Auth(context.Background(), "c1", 1)
	h.Auth(context.Background(), "c2", 1)

	snapshot := h.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot size = %d, want one entry per connection", len(snapshot))
	}
	if snapshot[0].ID != 1 || snapshot[1].ID != 1 {
		t.Errorf("snapshot = %+v, want both entries for user 1", snapshot)
	}
}

func TestHub_BannedUserAdmitted(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada", IsBanned: true})
	h := NewHub(fs)
	h.Attach(newFakeConn("c1"))

	if _, err := h.Auth(context.Background(), "c1", 1); err != nil {
		t.Fatalf("banned user rejected at auth: %v", err)
	}
	if len(h.Snapshot()) != 1 {
		t.Error("banned user missing from presence")
	}
}

func TestHub_AuthUnknownUser(t *testing.T) {
	h := NewHub(newFakeStore())
	h.Attach(newFakeConn("c1"))

	_, err := h.Auth(context.Background(), "c1", 99)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	if err.Code != errs.ErrUserNotFound {
		t.Errorf("err.Code = %d, want %d", err.Code, errs.ErrUserNotFound)
	}
	if len(h.Snapshot()) != 0 {
		t.Error("failed auth left a session behind")
	}
}

func TestHub_DisconnectRemovesSession(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada"})
	h := NewHub(fs)
	h.Attach(newFakeConn("c1"))
	h.Auth(context.Background(), "c1", 1)

	h.Disconnect(context.Background(), "c1")

	if len(h.Snapshot()) != 0 {
		t.Error("session survived disconnect")
	}
	writes := fs.statusHistory()
	if len(writes) != 2 || writes[1].status != user.StatusOffline {
		t.Errorf("status writes = %v, want online then offline", writes)
	}
}

func TestHub_DisconnectIdempotent(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada"})
	h := NewHub(fs)
	observer := newFakeConn("obs")
	h.Attach(observer)
	h.Attach(newFakeConn("c1"))
	h.Auth(context.Background(), "c1", 1)

	h.Disconnect(context.Background(), "c1")
	framesAfterFirst := observer.frameCount()

	h.Disconnect(context.Background(), "c1")

	if got := observer.frameCount(); got != framesAfterFirst {
		t.Errorf("second disconnect broadcast %d extra frames", got-framesAfterFirst)
	}
	if writes := fs.statusHistory(); len(writes) != 2 {
		t.Errorf("status writes = %v, want no extra writes on repeat disconnect", writes)
	}
}

func TestHub_DisconnectUnknownIsNoop(t *testing.T) {
	h := NewHub(newFakeStore())
	h.Disconnect(context.Background(), "ghost")
}

func TestHub_BroadcastReachesAllConnections(t *testing.T) {
	h := NewHub(newFakeStore(&user.User{ID: 1}))
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	h.Attach(c1)
	h.Attach(c2)

	h.Broadcast(Event{Type: EventNewMessage, Payload: MessagePayload{ID: 1, Text: "hi"}})

	for _, c := range []*fakeConn{c1, c2} {
		types := c.eventTypes()
		if len(types) != 1 || types[0] != EventNewMessage {
			t.Errorf("conn %s events = %v, want one new_message", c.id, types)
		}
	}
}

func TestHub_BroadcastExceptSkipsSender(t *testing.T) {
	h := NewHub(newFakeStore())
	sender := newFakeConn("sender")
	other := newFakeConn("other")
	h.Attach(sender)
	h.Attach(other)

	h.BroadcastExcept("sender", Event{Type: EventUserTyping, Payload: TypingPayload{UserID: 1}})

	if sender.frameCount() != 0 {
		t.Error("sender received its own typing event")
	}
	if other.frameCount() != 1 {
		t.Errorf("other received %d frames, want 1", other.frameCount())
	}
}

func TestHub_SlowConnectionStaysAttached(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada"})
	h := NewHub(fs)
	slow := newFakeConn("slow")
	slow.full = true
	h.Attach(slow)
	h.Attach(newFakeConn("c1"))

	// Frame is dropped for the slow connection; nobody is evicted.
	h.Auth(context.Background(), "c1", 1)

	if len(h.Snapshot()) != 1 {
		t.Error("presence changed after dropped frame")
	}
	if slow.frameCount() != 0 {
		t.Error("full connection recorded a frame")
	}
}

func TestHub_PresencePayloadStatusOnline(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1, Nickname: "ada", Status: user.StatusAway})
	h := NewHub(fs)
	conn := newFakeConn("c1")
	h.Attach(conn)
	h.Auth(context.Background(), "c1", 1)

	presence, ok := conn.lastPresence()
	if !ok {
		t.Fatal("no presence broadcast")
	}
	if presence.Users[0].Status != user.StatusOnline {
		t.Errorf("presence status = %q, want online regardless of persisted row", presence.Users[0].Status)
	}
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	fs := newFakeStore(&user.User{ID: 1})
	h := NewHub(fs)
	conn := newFakeConn("c1")
	h.Attach(conn)
	h.Auth(context.Background(), "c1", 1)

	h.Shutdown()

	if !conn.closed {
		t.Error("connection not closed on shutdown")
	}
	if len(h.Snapshot()) != 0 {
		t.Error("registry not emptied on shutdown")
	}
}
