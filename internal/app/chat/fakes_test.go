package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"acaragraph/internal/app/user"
)

// fakeStore is an in-memory Store used by the core tests.
type fakeStore struct {
	mu sync.Mutex

	users    map[int64]*user.User
	messages []MessagePayload
	nextID   int64

	statusWrites []statusWrite
	clearedMutes []int64
	incremented  []int64
	events       []string
	sweepCalls   int

	getUserErr   error
	setStatusErr error
	clearMuteErr error
	incrementErr error
	insertErr    error
	sweepErr     error
	listErr      error

	sweepDemoted int64
}

type statusWrite struct {
	userID int64
	status user.Status
}

func newFakeStore(users ...*user.User) *fakeStore {
	fs := &fakeStore{users: make(map[int64]*user.User)}
	for _, u := range users {
		fs.users[u.ID] = u
	}
	return fs
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) SetUserStatus(_ context.Context, id int64, status user.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	f.statusWrites = append(f.statusWrites, statusWrite{userID: id, status: status})
	if u, ok := f.users[id]; ok {
		u.Status = status
	}
	return nil
}

func (f *fakeStore) ClearMute(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearMuteErr != nil {
		return f.clearMuteErr
	}
	f.clearedMutes = append(f.clearedMutes, id)
	if u, ok := f.users[id]; ok {
		u.MutedUntil = nil
	}
	return nil
}

func (f *fakeStore) IncrementMessageCount(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.incremented = append(f.incremented, id)
	if u, ok := f.users[id]; ok {
		u.MessageCount++
	}
	return nil
}

func (f *fakeStore) InsertMessage(_ context.Context, userID int64, text, msgType string) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, time.Time{}, f.insertErr
	}
	f.nextID++
	createdAt := time.Now()
	payload := MessagePayload{ID: f.nextID, Text: text, Type: msgType, Timestamp: createdAt}
	if u, ok := f.users[userID]; ok {
		payload.User = u.Profile()
	}
	f.messages = append(f.messages, payload)
	return f.nextID, createdAt, nil
}

func (f *fakeStore) SweepStalePresence(_ context.Context, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepCalls++
	if f.sweepErr != nil {
		return 0, f.sweepErr
	}
	return f.sweepDemoted, nil
}

func (f *fakeStore) ListRecentMessages(_ context.Context, limit int) ([]MessagePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.messages) {
		limit = len(f.messages)
	}
	out := make([]MessagePayload, limit)
	copy(out, f.messages[len(f.messages)-limit:])
	return out, nil
}

func (f *fakeStore) LogEvent(_ context.Context, _ int64, eventType, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeStore) statusHistory() []statusWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]statusWrite, len(f.statusWrites))
	copy(out, f.statusWrites)
	return out
}

var _ Store = (*fakeStore)(nil)

// fakeConn is an in-memory Conn capturing the frames sent to one connection.
type fakeConn struct {
	id string

	mu     sync.Mutex
	frames [][]byte
	full   bool
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full || c.closed {
		return false
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	c.frames = append(c.frames, copied)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// lastPresence decodes the most recent presence frame received, if any.
func (c *fakeConn) lastPresence() (PresencePayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.frames) - 1; i >= 0; i-- {
		var evt struct {
			Type    EventType       `json:"type"`
			Payload PresencePayload `json:"payload"`
		}
		if err := json.Unmarshal(c.frames[i], &evt); err != nil {
			continue
		}
		if evt.Type == EventOnlineUsers {
			return evt.Payload, true
		}
	}
	return PresencePayload{}, false
}

// eventTypes lists the types of all frames received, in order.
func (c *fakeConn) eventTypes() []EventType {
	c.mu.Lock()
	defer c.mu.Unlock()

	var types []EventType
	for _, frame := range c.frames {
		var evt struct {
			Type EventType `json:"type"`
		}
		if err := json.Unmarshal(frame, &evt); err != nil {
			continue
		}
		types = append(types, evt.Type)
	}
	return types
}
