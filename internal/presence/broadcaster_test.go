package presence

import (
	"testing"
	"time"

	"arena-chat-service/internal/events"
	"arena-chat-service/internal/models"
	"arena-chat-service/internal/outbox"
	"arena-chat-service/internal/registry"
	"arena-chat-service/internal/room"
)

type delivery struct {
	socketID string
	env      events.Envelope
}

type recorder struct {
	deliveries []delivery
}

func (r *recorder) Deliver(socketID string, env events.Envelope) {
	r.deliveries = append(r.deliveries, delivery{socketID: socketID, env: env})
}

func (r *recorder) count(t events.Type) int {
	n := 0
	for _, d := range r.deliveries {
		if d.env.Type == t {
			n++
		}
	}
	return n
}

// lifecycle mimics the connection entry point: it feeds registry edges
// into the broadcaster exactly the way the websocket handler does.
type lifecycle struct {
	reg *registry.Registry
	b   *Broadcaster
}

func (l *lifecycle) connect(userID, socketID string) {
	if first := l.reg.AddConnection(userID, socketID, userID); first {
		l.b.UserOnline(userID)
	}
}

func (l *lifecycle) disconnect(socketID string) {
	userID, _, last := l.reg.RemoveConnection(socketID)
	if last {
		l.b.UserOffline(userID)
	}
}

func TestPresenceEdgeTriggering(t *testing.T) {
	reg := registry.New()
	rec := &recorder{}
	b := NewBroadcaster(reg, rec, outbox.Sync{})
	lc := &lifecycle{reg: reg, b: b}

	// A friend watches A's presence channel.
	reg.AddConnection("friend", "sF", "Friend")
	reg.JoinRoom("sF", room.Channel(room.KindPresence, "A"))

	lc.connect("A", "s1")
	if got := rec.count(events.TypeUserOnline); got != 1 {
		t.Fatalf("first socket must emit online exactly once, got %d", got)
	}

	// Second device: no re-announcement.
	lc.connect("A", "s2")
	if got := rec.count(events.TypeUserOnline); got != 1 {
		t.Errorf("second socket must not re-emit online, got %d", got)
	}

	// First device drops, s2 still live: no offline.
	lc.disconnect("s1")
	if got := rec.count(events.TypeUserOffline); got != 0 {
		t.Errorf("offline must not fire while a socket remains, got %d", got)
	}

	// Last device drops: offline exactly once.
	lc.disconnect("s2")
	if got := rec.count(events.TypeUserOffline); got != 1 {
		t.Errorf("last socket must emit offline exactly once, got %d", got)
	}

	// Duplicate disconnect signal is harmless.
	lc.disconnect("s2")
	if got := rec.count(events.TypeUserOffline); got != 1 {
		t.Errorf("duplicate disconnect must not re-emit offline, got %d", got)
	}
}

func TestPresenceDeliveredToSubscribersOnly(t *testing.T) {
	reg := registry.New()
	rec := &recorder{}
	b := NewBroadcaster(reg, rec, outbox.Sync{})

	reg.AddConnection("friend", "sF", "Friend")
	reg.AddConnection("stranger", "sS", "Stranger")
	reg.JoinRoom("sF", room.Channel(room.KindPresence, "A"))

	b.UserOnline("A")

	if len(rec.deliveries) != 1 || rec.deliveries[0].socketID != "sF" {
		t.Errorf("only the presence subscriber should hear the event, got %+v", rec.deliveries)
	}
}

func TestPushNotificationToAllDevices(t *testing.T) {
	reg := registry.New()
	rec := &recorder{}
	b := NewBroadcaster(reg, rec, outbox.Sync{})

	reg.AddConnection("A", "s1", "Alice")
	reg.AddConnection("A", "s2", "Alice")
	reg.AddConnection("B", "s3", "Bob")

	n := &models.Notification{ID: "n1", UserID: "A", Kind: "reply", Title: "t", Text: "x", CreatedAt: time.Now()}
	b.PushNotification("A", n)

	sockets := make(map[string]bool)
	for _, d := range rec.deliveries {
		if d.env.Type != events.TypeNotification {
			t.Errorf("unexpected event %s", d.env.Type)
		}
		sockets[d.socketID] = true
	}
	if !sockets["s1"] || !sockets["s2"] || sockets["s3"] {
		t.Errorf("expected delivery to s1+s2 only, got %v", sockets)
	}
}

func TestPushNotificationOfflineUserIsNoop(t *testing.T) {
	reg := registry.New()
	rec := &recorder{}
	b := NewBroadcaster(reg, rec, outbox.Sync{})

	n := &models.Notification{ID: "n1", UserID: "ghost", Kind: "reply", CreatedAt: time.Now()}
	b.PushNotification("ghost", n)

	if len(rec.deliveries) != 0 {
		t.Errorf("offline push must be skipped silently, got %d deliveries", len(rec.deliveries))
	}
}

func TestFriendRequestEvents(t *testing.T) {
	reg := registry.New()
	rec := &recorder{}
	b := NewBroadcaster(reg, rec, outbox.Sync{})

	reg.AddConnection("B", "sB", "Bob")
	reg.JoinRoom("sB", room.Channel(room.KindFriendRequests, "B"))
	reg.AddConnection("A", "sA", "Alice")
	reg.JoinRoom("sA", room.Channel(room.KindFriendRequests, "A"))

	fr := &models.FriendRequest{ID: "fr1", FromUserID: "A", ToUserID: "B"}

	b.FriendRequestReceived(fr, "Alice")
	if rec.count(events.TypeFriendRequestReceived) != 1 || rec.deliveries[0].socketID != "sB" {
		t.Errorf("request_received must reach the recipient's channel, got %+v", rec.deliveries)
	}

	rec.deliveries = nil
	b.FriendRequestAccepted(fr, "Bob")
	if rec.count(events.TypeFriendRequestAccepted) != 1 || rec.deliveries[0].socketID != "sA" {
		t.Errorf("request_accepted must reach the requester's channel, got %+v", rec.deliveries)
	}

	rec.deliveries = nil
	b.FriendRequestRejected(fr, "Bob")
	if rec.count(events.TypeFriendRequestRejected) != 1 || rec.deliveries[0].socketID != "sA" {
		t.Errorf("request_rejected must reach the requester's channel, got %+v", rec.deliveries)
	}
}
