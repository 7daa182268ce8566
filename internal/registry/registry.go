package registry

import (
	"log/slog"
	"sync"
)

// Session is one live transport connection. The registry owns every
// Session exclusively; callers only ever see copies.
type Session struct {
	SocketID    string
	UserID      string
	DisplayName string

	rooms map[string]struct{}
}

// Registry is the process-wide index of user <-> socket <-> room
// membership. All three maps are guarded by one mutex so no reader can
// observe the room index and the per-session room set out of step.
//
// Lookups on unknown keys degrade to empty results rather than errors:
// a message arriving just after a disconnect is routine, not exceptional.
type Registry struct {
	mu sync.RWMutex

	// sessions by socket ID
	sessions map[string]*Session

	// socket IDs per user
	userSockets map[string]map[string]struct{}

	// socket IDs per room
	roomSockets map[string]map[string]struct{}
}

func New() *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		userSockets: make(map[string]map[string]struct{}),
		roomSockets: make(map[string]map[string]struct{}),
	}
}

// AddConnection registers a session. Calling it twice with the same
// socket ID overwrites the session metadata without duplicating index
// entries. It reports whether this was the user's first live socket,
// which is the caller's cue to announce the user online.
func (r *Registry) AddConnection(userID, socketID, displayName string) (first bool) {
	if socketID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[socketID]; ok {
		// Re-registration: refresh metadata, re-home the socket if the
		// user somehow changed, keep joined rooms intact.
		if existing.UserID != userID {
			r.detachUserLocked(existing.UserID, socketID)
			first = len(r.userSockets[userID]) == 0
			r.attachUserLocked(userID, socketID)
		}
		existing.UserID = userID
		existing.DisplayName = displayName
		return first
	}

	first = len(r.userSockets[userID]) == 0
	r.sessions[socketID] = &Session{
		SocketID:    socketID,
		UserID:      userID,
		DisplayName: displayName,
		rooms:       make(map[string]struct{}),
	}
	r.attachUserLocked(userID, socketID)

	slog.Debug("session registered", "socketID", socketID, "userID", userID)
	return first
}

// RemoveConnection tears down a session as one logical step: the socket
// leaves every room it had joined, its user's socket set shrinks, and
// the session is deleted. Idempotent; removing an unknown socket is a
// no-op. It returns the user, the rooms the socket vacated, and whether
// this was the user's last socket (the offline edge).
func (r *Registry) RemoveConnection(socketID string) (userID string, vacated []string, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[socketID]
	if !ok {
		return "", nil, false
	}

	userID = sess.UserID
	vacated = make([]string, 0, len(sess.rooms))
	for roomID := range sess.rooms {
		vacated = append(vacated, roomID)
		r.detachRoomLocked(roomID, socketID)
	}

	r.detachUserLocked(userID, socketID)
	last = len(r.userSockets[userID]) == 0
	delete(r.sessions, socketID)

	slog.Debug("session removed", "socketID", socketID, "userID", userID, "lastSocket", last)
	return userID, vacated, last
}

// JoinRoom adds the socket to a room, updating the room index and the
// session's own room set together. Unknown sockets are ignored.
func (r *Registry) JoinRoom(socketID, roomID string) {
	if roomID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[socketID]
	if !ok {
		return
	}

	sess.rooms[roomID] = struct{}{}
	if r.roomSockets[roomID] == nil {
		r.roomSockets[roomID] = make(map[string]struct{})
	}
	r.roomSockets[roomID][socketID] = struct{}{}
}

// LeaveRoom is the inverse of JoinRoom. Unknown sockets and rooms are
// ignored; an emptied room is dropped from the index entirely.
func (r *Registry) LeaveRoom(socketID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[socketID]
	if !ok {
		return
	}

	delete(sess.rooms, roomID)
	r.detachRoomLocked(roomID, socketID)
}

// RoomSockets returns a snapshot of the socket IDs currently in a room.
// An unknown room yields an empty slice.
func (r *Registry) RoomSockets(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keysOf(r.roomSockets[roomID])
}

// UserSockets returns a snapshot of the user's live socket IDs.
func (r *Registry) UserSockets(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keysOf(r.userSockets[userID])
}

// IsUserConnected reports whether the user has at least one live socket.
func (r *Registry) IsUserConnected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.userSockets[userID]) > 0
}

// RoomUsers returns the distinct user IDs present in a room, deduped
// across each user's sockets.
func (r *Registry) RoomUsers(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	users := make([]string, 0)
	for socketID := range r.roomSockets[roomID] {
		sess, ok := r.sessions[socketID]
		if !ok {
			continue
		}
		if _, dup := seen[sess.UserID]; dup {
			continue
		}
		seen[sess.UserID] = struct{}{}
		users = append(users, sess.UserID)
	}
	return users
}

// Lookup returns a copy of the session for a socket, if it exists.
func (r *Registry) Lookup(socketID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[socketID]
	if !ok {
		return Session{}, false
	}
	return Session{SocketID: sess.SocketID, UserID: sess.UserID, DisplayName: sess.DisplayName}, true
}

// DisplayName resolves the user's display name from any of their live
// sessions. Empty string when the user has no socket.
func (r *Registry) DisplayName(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for socketID := range r.userSockets[userID] {
		if sess, ok := r.sessions[socketID]; ok {
			return sess.DisplayName
		}
	}
	return ""
}

// Rooms returns a snapshot of the rooms a socket has joined.
func (r *Registry) Rooms(socketID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[socketID]
	if !ok {
		return []string{}
	}
	return keysOf(sess.rooms)
}

func (r *Registry) attachUserLocked(userID, socketID string) {
	if r.userSockets[userID] == nil {
		r.userSockets[userID] = make(map[string]struct{})
	}
	r.userSockets[userID][socketID] = struct{}{}
}

func (r *Registry) detachUserLocked(userID, socketID string) {
	set := r.userSockets[userID]
	delete(set, socketID)
	if len(set) == 0 {
		delete(r.userSockets, userID)
	}
}

func (r *Registry) detachRoomLocked(roomID, socketID string) {
	set := r.roomSockets[roomID]
	delete(set, socketID)
	if len(set) == 0 {
		delete(r.roomSockets, roomID)
	}
}

func keysOf(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
