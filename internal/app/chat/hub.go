package chat

import (
	"context"
	"errors"
	"sync"

	"acaragraph/internal/app/user"
	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/metrics"
)

// Conn is the transport side of one WebSocket connection as the hub sees it.
// Enqueue must not block; it reports false when the outbound buffer is full
// and the frame was dropped.
type Conn interface {
	ID() string
	Enqueue(data []byte) bool
	Close()
}

// Session is one authenticated connection in the registry. A user with two
// tabs open holds two independent sessions.
type Session struct {
	ConnID  string
	UserID  int64
	Profile user.Profile
}

// Hub is the in-memory registry of live connections and authenticated
// sessions. It is the source of truth for who is online; persisted status
// values are only hints for offline viewers.
type Hub struct {
	store Store

	mu       sync.RWMutex
	conns    map[string]Conn
	sessions map[string]*Session
	order    []string // connection ids in admission order
}

// NewHub creates an empty registry backed by the given store.
func NewHub(store Store) *Hub {
	return &Hub{
		store:    store,
		conns:    make(map[string]Conn),
		sessions: make(map[string]*Session),
	}
}

// Attach registers a raw connection before authentication. Unauthenticated
// connections receive broadcasts but hold no presence entry.
func (h *Hub) Attach(c Conn) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	open := len(h.conns)
	h.mu.Unlock()

	metrics.ConnectionsOpen.Set(float64(open))
}

// Auth binds a connection to a user identity, loading the user fresh from the
// store. Re-authenticating an already bound connection overwrites its identity
// in place and keeps its admission position. Banned users are admitted; the
// gate stops them at send time.
func (h *Hub) Auth(ctx context.Context, connID string, userID int64) (Session, *errs.CustomError) {
	u, err := h.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, errs.NewError(errs.ErrUserNotFound)
		}
		logx.Error(err, "Hub failed to load user during auth", "user_id", userID)
		return Session{}, errs.NewError(errs.ErrStoreFailed)
	}

	profile := u.Profile()
	profile.Status = user.StatusOnline

	h.mu.Lock()
	sess, exists := h.sessions[connID]
	if exists {
		sess.UserID = userID
		sess.Profile = profile
	} else {
		sess = &Session{ConnID: connID, UserID: userID, Profile: profile}
		h.sessions[connID] = sess
		h.order = append(h.order, connID)
	}
	snapshot := *sess
	total := len(h.sessions)
	h.mu.Unlock()

	metrics.SessionsOnline.Set(float64(total))

	// Persisted status is advisory; a write failure does not fail the auth.
	if err := h.store.SetUserStatus(ctx, userID, user.StatusOnline); err != nil {
		logx.Warn("Failed to persist online status", "user_id", userID, "error", err.Error())
	}

	logx.Info("Session authenticated", "conn_id", connID, "user_id", userID, "nickname", profile.Nickname)
	h.BroadcastPresence()
	return snapshot, nil
}

// Disconnect removes a connection and, if it was authenticated, its session.
// Unknown ids are a no-op. Presence is rebroadcast only when a session was
// actually evicted.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	h.mu.Lock()
	delete(h.conns, connID)
	open := len(h.conns)

	sess, hadSession := h.sessions[connID]
	if hadSession {
		delete(h.sessions, connID)
		for i, id := range h.order {
			if id == connID {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
	total := len(h.sessions)
	h.mu.Unlock()

	metrics.ConnectionsOpen.Set(float64(open))
	if !hadSession {
		return
	}
	metrics.SessionsOnline.Set(float64(total))

	if err := h.store.SetUserStatus(ctx, sess.UserID, user.StatusOffline); err != nil {
		logx.Warn("Failed to persist offline status", "user_id", sess.UserID, "error", err.Error())
	}

	logx.Info("Session disconnected", "conn_id", connID, "user_id", sess.UserID)
	h.BroadcastPresence()
}

// SessionFor returns a copy of the session bound to the connection, if any.
func (h *Hub) SessionFor(connID string) (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Snapshot returns the profiles of all authenticated sessions in admission
// order. One entry per session, so the same user may appear more than once.
func (h *Hub) Snapshot() []user.Profile {
	h.mu.RLock()
	defer h.mu.RUnlock()

	profiles := make([]user.Profile, 0, len(h.order))
	for _, connID := range h.order {
		if sess, ok := h.sessions[connID]; ok {
			profiles = append(profiles, sess.Profile)
		}
	}
	return profiles
}

// BroadcastPresence fans the current snapshot out to every attached
// connection, authenticated or not.
func (h *Hub) BroadcastPresence() {
	users := h.Snapshot()
	h.Broadcast(Event{
		Type:    EventOnlineUsers,
		Payload: PresencePayload{Users: users, Count: len(users)},
	})
}

// Broadcast delivers the event to every attached connection. Delivery is best
// effort: a connection with a full buffer drops the frame and stays attached.
func (h *Hub) Broadcast(evt Event) {
	h.broadcast(evt, "")
}

// BroadcastExcept delivers the event to every attached connection but one.
func (h *Hub) BroadcastExcept(excludeConnID string, evt Event) {
	h.broadcast(evt, excludeConnID)
}

func (h *Hub) broadcast(evt Event, excludeConnID string) {
	data, err := evt.Marshal()
	if err != nil {
		logx.Error(err, "Failed to marshal broadcast event", "event_type", string(evt.Type))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.conns {
		if id == excludeConnID {
			continue
		}
		if !c.Enqueue(data) {
			logx.Warn("Dropped frame for slow connection", "conn_id", id, "event_type", string(evt.Type))
		}
	}
}

// SendTo delivers the event to a single connection. Returns false when the
// connection is gone or its buffer is full.
func (h *Hub) SendTo(connID string, evt Event) bool {
	data, err := evt.Marshal()
	if err != nil {
		logx.Error(err, "Failed to marshal event", "event_type", string(evt.Type))
		return false
	}

	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Enqueue(data)
}

// Shutdown closes every attached connection and empties the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]Conn)
	h.sessions = make(map[string]*Session)
	h.order = nil
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}

	metrics.ConnectionsOpen.Set(0)
	metrics.SessionsOnline.Set(0)
}
