package registry

import (
	"sort"
	"testing"
)

// checkSymmetry verifies that the room index and every session's own
// room set agree in both directions.
func checkSymmetry(t *testing.T, r *Registry) {
	t.Helper()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for roomID, sockets := range r.roomSockets {
		for socketID := range sockets {
			sess, ok := r.sessions[socketID]
			if !ok {
				t.Errorf("room %q references unknown socket %q", roomID, socketID)
				continue
			}
			if _, ok := sess.rooms[roomID]; !ok {
				t.Errorf("room %q lists socket %q but the session does not list the room", roomID, socketID)
			}
		}
	}

	for socketID, sess := range r.sessions {
		for roomID := range sess.rooms {
			if _, ok := r.roomSockets[roomID][socketID]; !ok {
				t.Errorf("session %q lists room %q but the room does not list the socket", socketID, roomID)
			}
		}
	}
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestAddConnectionFirstSocket(t *testing.T) {
	r := New()

	if first := r.AddConnection("u1", "s1", "Alice"); !first {
		t.Error("first socket should report the online edge")
	}
	if first := r.AddConnection("u1", "s2", "Alice"); first {
		t.Error("second socket must not report the online edge")
	}
	if !r.IsUserConnected("u1") {
		t.Error("user should be connected")
	}
	checkSymmetry(t, r)
}

func TestAddConnectionOverwriteKeepsIndices(t *testing.T) {
	r := New()
	r.AddConnection("u1", "s1", "Alice")
	r.JoinRoom("s1", "team:7")

	// Same socket registered again: metadata refreshed, no duplicates.
	r.AddConnection("u1", "s1", "Alice2")

	if got := r.UserSockets("u1"); len(got) != 1 {
		t.Fatalf("expected 1 socket after overwrite, got %v", got)
	}
	if got := r.RoomSockets("team:7"); len(got) != 1 {
		t.Fatalf("expected joined room to survive overwrite, got %v", got)
	}
	sess, _ := r.Lookup("s1")
	if sess.DisplayName != "Alice2" {
		t.Errorf("expected refreshed display name, got %q", sess.DisplayName)
	}
	checkSymmetry(t, r)
}

func TestAddConnectionEmptySocketID(t *testing.T) {
	r := New()
	if first := r.AddConnection("u1", "", "Alice"); first {
		t.Error("empty socket ID must be rejected")
	}
	if r.IsUserConnected("u1") {
		t.Error("no session should have been created")
	}
}

func TestJoinLeaveRoomSymmetry(t *testing.T) {
	r := New()
	r.AddConnection("u1", "s1", "Alice")
	r.AddConnection("u2", "s2", "Bob")

	r.JoinRoom("s1", "team:7")
	r.JoinRoom("s2", "team:7")
	r.JoinRoom("s1", "private:u1:u2")
	checkSymmetry(t, r)

	r.LeaveRoom("s1", "team:7")
	checkSymmetry(t, r)

	if got := sorted(r.RoomSockets("team:7")); len(got) != 1 || got[0] != "s2" {
		t.Errorf("expected [s2], got %v", got)
	}
	if got := sorted(r.Rooms("s1")); len(got) != 1 || got[0] != "private:u1:u2" {
		t.Errorf("expected [private:u1:u2], got %v", got)
	}
}

func TestJoinRoomUnknownSocket(t *testing.T) {
	r := New()
	r.JoinRoom("ghost", "team:7")

	if got := r.RoomSockets("team:7"); len(got) != 0 {
		t.Errorf("unknown socket must not create room membership, got %v", got)
	}
}

func TestRemoveConnection(t *testing.T) {
	r := New()
	r.AddConnection("u1", "s1", "Alice")
	r.AddConnection("u1", "s2", "Alice")
	r.JoinRoom("s1", "team:7")
	r.JoinRoom("s1", "notifications:u1")

	userID, vacated, last := r.RemoveConnection("s1")
	if userID != "u1" {
		t.Errorf("expected u1, got %q", userID)
	}
	if last {
		t.Error("s2 is still connected, offline edge must not fire")
	}
	if got := sorted(vacated); len(got) != 2 || got[0] != "notifications:u1" || got[1] != "team:7" {
		t.Errorf("unexpected vacated rooms %v", got)
	}
	checkSymmetry(t, r)

	_, _, last = r.RemoveConnection("s2")
	if !last {
		t.Error("removing the final socket must report the offline edge")
	}
	if r.IsUserConnected("u1") {
		t.Error("user should be fully disconnected")
	}
	checkSymmetry(t, r)
}

func TestRemoveConnectionIdempotent(t *testing.T) {
	r := New()
	r.AddConnection("u1", "s1", "Alice")
	r.JoinRoom("s1", "team:7")

	r.RemoveConnection("s1")
	userID, vacated, last := r.RemoveConnection("s1")

	if userID != "" || len(vacated) != 0 || last {
		t.Errorf("second remove must be a no-op, got (%q, %v, %v)", userID, vacated, last)
	}
	if got := r.RoomSockets("team:7"); len(got) != 0 {
		t.Errorf("room should be empty, got %v", got)
	}
	checkSymmetry(t, r)
}

func TestRoomUsersDedupesMultiDevice(t *testing.T) {
	r := New()
	r.AddConnection("u1", "s1", "Alice")
	r.AddConnection("u1", "s2", "Alice")
	r.AddConnection("u2", "s3", "Bob")
	r.JoinRoom("s1", "team:7")
	r.JoinRoom("s2", "team:7")
	r.JoinRoom("s3", "team:7")

	users := sorted(r.RoomUsers("team:7"))
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("expected [u1 u2], got %v", users)
	}
}

func TestEmptyLookupsNeverFail(t *testing.T) {
	r := New()

	if got := r.RoomSockets("nowhere"); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
	if got := r.UserSockets("nobody"); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
	if r.IsUserConnected("nobody") {
		t.Error("unknown user must not be connected")
	}
	if got := r.RoomUsers("nowhere"); len(got) != 0 {
		t.Errorf("expected no users, got %v", got)
	}
	if name := r.DisplayName("nobody"); name != "" {
		t.Errorf("expected empty display name, got %q", name)
	}
}

func TestEmptiedRoomIsDroppedFromIndex(t *testing.T) {
	r := New()
	r.AddConnection("u1", "s1", "Alice")
	r.JoinRoom("s1", "team:7")
	r.LeaveRoom("s1", "team:7")

	r.mu.RLock()
	_, ok := r.roomSockets["team:7"]
	r.mu.RUnlock()
	if ok {
		t.Error("empty room must be removed from the index")
	}
}
