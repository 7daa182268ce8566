// Package presence emits online/offline transitions and pushes
// notification and friend-request events to a user's live sockets.
package presence

import (
	"context"
	"log/slog"

	"arena-chat-service/internal/events"
	"arena-chat-service/internal/models"
	"arena-chat-service/internal/outbox"
	"arena-chat-service/internal/registry"
	"arena-chat-service/internal/room"
)

// Deliverer pushes one event to one socket, fire-and-forget.
type Deliverer interface {
	Deliver(socketID string, env events.Envelope)
}

// StatusStore mirrors online state into an external cache (Redis).
// Best-effort: failures are logged by the outbox, never surfaced.
type StatusStore interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}

type Broadcaster struct {
	reg     *registry.Registry
	deliver Deliverer
	queue   outbox.Queue

	status StatusStore // optional
}

func NewBroadcaster(reg *registry.Registry, deliver Deliverer, queue outbox.Queue) *Broadcaster {
	return &Broadcaster{reg: reg, deliver: deliver, queue: queue}
}

// WithStatus wires the external online-status mirror.
func (b *Broadcaster) WithStatus(s StatusStore) *Broadcaster {
	b.status = s
	return b
}

// UserOnline announces the 0->1 socket transition to everyone
// subscribed to this user's presence channel. The caller owns the edge
// detection (registry AddConnection reports it); calling this on every
// connect would re-announce users already online.
func (b *Broadcaster) UserOnline(userID string) {
	b.fanoutToRoom(room.Channel(room.KindPresence, userID), events.NewUserOnline(userID))
	b.mirrorStatus(userID, true)
	slog.Debug("user online", "userID", userID)
}

// UserOffline announces the 1->0 transition.
func (b *Broadcaster) UserOffline(userID string) {
	b.fanoutToRoom(room.Channel(room.KindPresence, userID), events.NewUserOffline(userID))
	b.mirrorStatus(userID, false)
	slog.Debug("user offline", "userID", userID)
}

// PushNotification delivers a stored notification to every live socket
// of the recipient. An offline recipient is not an error; the record
// stays retrievable from the store.
func (b *Broadcaster) PushNotification(userID string, n *models.Notification) {
	env := events.NewNotification(n.ID, n.Kind, n.Title, n.Text, n.CreatedAt)
	for _, socketID := range b.reg.UserSockets(userID) {
		b.deliver.Deliver(socketID, env)
	}
}

// FriendRequestReceived pushes to the recipient's friend_requests
// channel.
func (b *Broadcaster) FriendRequestReceived(fr *models.FriendRequest, fromName string) {
	b.pushFriendEvent(events.TypeFriendRequestReceived, fr, fromName, fr.ToUserID)
}

// FriendRequestAccepted notifies the original requester.
func (b *Broadcaster) FriendRequestAccepted(fr *models.FriendRequest, byName string) {
	b.pushFriendEvent(events.TypeFriendRequestAccepted, fr, byName, fr.FromUserID)
}

// FriendRequestRejected notifies the original requester.
func (b *Broadcaster) FriendRequestRejected(fr *models.FriendRequest, byName string) {
	b.pushFriendEvent(events.TypeFriendRequestRejected, fr, byName, fr.FromUserID)
}

func (b *Broadcaster) pushFriendEvent(t events.Type, fr *models.FriendRequest, name, recipient string) {
	env := events.NewFriendRequest(t, events.FriendRequestPayload{
		RequestID:  fr.ID,
		FromUserID: fr.FromUserID,
		FromName:   name,
		ToUserID:   fr.ToUserID,
	})
	b.fanoutToRoom(room.Channel(room.KindFriendRequests, recipient), env)
}

func (b *Broadcaster) fanoutToRoom(roomID string, env events.Envelope) {
	for _, socketID := range b.reg.RoomSockets(roomID) {
		b.deliver.Deliver(socketID, env)
	}
}

func (b *Broadcaster) mirrorStatus(userID string, online bool) {
	if b.status == nil {
		return
	}
	b.queue.Enqueue(outbox.Task{Name: "presence-mirror", Run: func(ctx context.Context) error {
		if online {
			return b.status.SetOnline(ctx, userID)
		}
		return b.status.SetOffline(ctx, userID)
	}})
}
