// Package chat validates and routes message traffic for team and
// private rooms: create, edit, delete and typing events, with
// authorship enforced before any mutation reaches the store.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"arena-chat-service/internal/events"
	"arena-chat-service/internal/models"
	"arena-chat-service/internal/outbox"
	"arena-chat-service/internal/registry"
	"arena-chat-service/internal/room"
	"arena-chat-service/internal/session"
	"arena-chat-service/internal/store"
)

// Deliverer pushes one event to one socket, fire-and-forget.
type Deliverer interface {
	Deliver(socketID string, env events.Envelope)
}

// NotificationPusher delivers a stored notification to the recipient's
// live sockets, if any.
type NotificationPusher interface {
	PushNotification(userID string, n *models.Notification)
}

// EventSink receives a copy of every broadcast event, off the hot path.
type EventSink interface {
	Publish(ctx context.Context, roomID string, env events.Envelope) error
}

// SystemDisplayName labels messages with no author.
const SystemDisplayName = "Arena"

type Handler struct {
	reg      *registry.Registry
	router   *room.Router
	messages store.MessageStore
	notifs   store.NotificationStore
	deliver  Deliverer
	queue    outbox.Queue

	// optional
	pusher NotificationPusher
	audit  EventSink
}

func NewHandler(
	reg *registry.Registry,
	router *room.Router,
	messages store.MessageStore,
	notifs store.NotificationStore,
	deliver Deliverer,
	queue outbox.Queue,
) *Handler {
	return &Handler{
		reg:      reg,
		router:   router,
		messages: messages,
		notifs:   notifs,
		deliver:  deliver,
		queue:    queue,
	}
}

// WithPusher wires live push for reply notifications.
func (h *Handler) WithPusher(p NotificationPusher) *Handler {
	h.pusher = p
	return h
}

// WithAudit wires the broadcast audit stream.
func (h *Handler) WithAudit(sink EventSink) *Handler {
	h.audit = sink
	return h
}

// Join subscribes the socket to a room and acknowledges the caller
// only; nobody else is told.
func (h *Handler) Join(socketID, roomID string) error {
	if roomID == "" {
		return invalid("roomId", "must not be empty")
	}
	if err := h.router.Join(socketID, roomID); err != nil {
		return err
	}

	sess, _ := h.reg.Lookup(socketID)
	h.deliver.Deliver(socketID, events.NewJoinedRoom(roomID, sess.UserID))
	return nil
}

// Leave is symmetric with Join; no announcement to others.
func (h *Handler) Leave(socketID, roomID string) error {
	if roomID == "" {
		return invalid("roomId", "must not be empty")
	}
	if err := h.router.Leave(socketID, roomID); err != nil {
		return err
	}

	sess, _ := h.reg.Lookup(socketID)
	h.deliver.Deliver(socketID, events.NewLeftRoom(roomID, sess.UserID))
	return nil
}

// SendInput carries one validated-to-be send command. AuthorID nil
// means system-authored.
type SendInput struct {
	RoomID   string
	AuthorID *string
	Body     string
	ReplyTo  *string
	URL      *string
	FileName *string
}

// Send persists the message and fans it out to the room's current
// socket set, including the sender's own other devices. A send into an
// empty room still persists; the broadcast just reaches nobody. The
// reply notification is queued best-effort and can complete after the
// broadcast.
func (h *Handler) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	if in.RoomID == "" {
		return nil, invalid("roomId", "must not be empty")
	}
	if strings.TrimSpace(in.Body) == "" && in.URL == nil {
		return nil, invalid("body", "must not be empty")
	}
	if in.AuthorID != nil && *in.AuthorID == "" {
		return nil, invalid("authorId", "must not be empty")
	}

	msg := &models.Message{
		RoomID:   in.RoomID,
		AuthorID: in.AuthorID,
		Body:     in.Body,
		ReplyTo:  in.ReplyTo,
		URL:      in.URL,
		FileName: in.FileName,
	}
	if err := h.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	senderName := SystemDisplayName
	if in.AuthorID != nil {
		// Resolved at send time from the live session, never cached.
		if name := h.reg.DisplayName(*in.AuthorID); name != "" {
			senderName = name
		} else {
			senderName = *in.AuthorID
		}
	}

	if msg.ReplyTo != nil {
		h.queueReplyNotification(msg, senderName)
	}

	env := events.NewMessageReceived(events.MessagePayload{
		MessageID:  msg.ID,
		RoomID:     msg.RoomID,
		AuthorID:   msg.AuthorID,
		AuthorName: senderName,
		Body:       msg.Body,
		ReplyToID:  msg.ReplyTo,
		URL:        msg.URL,
		FileName:   msg.FileName,
		SentAt:     msg.CreatedAt.Unix(),
	})
	h.fanout(msg.RoomID, env, nil)

	return msg, nil
}

// Edit mutates a message body after the authorship check. System
// messages (nil author) are never editable: there is no author to act
// for.
func (h *Handler) Edit(ctx context.Context, messageID, roomID, newBody string, requester session.Identity) (*models.Message, error) {
	if messageID == "" {
		return nil, invalid("messageId", "must not be empty")
	}
	if strings.TrimSpace(newBody) == "" {
		return nil, invalid("body", "must not be empty")
	}

	msg, err := h.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID == nil || *msg.AuthorID != requester.UserID {
		return nil, ErrForbidden
	}

	updated, err := h.messages.UpdateMessage(ctx, messageID, newBody)
	if err != nil {
		return nil, err
	}

	// Socket set computed fresh, not the set at send time.
	h.fanout(roomID, events.NewMessageEdited(updated.ID, roomID, updated.Body, updated.UpdatedAt), nil)
	return updated, nil
}

// Delete removes a message after the authorship check and broadcasts
// only the id, never the content. System messages may be deleted by
// admins only.
func (h *Handler) Delete(ctx context.Context, messageID, roomID string, requester session.Identity) error {
	if messageID == "" {
		return invalid("messageId", "must not be empty")
	}

	msg, err := h.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.AuthorID == nil {
		if !requester.IsAdmin() {
			return ErrForbidden
		}
	} else if *msg.AuthorID != requester.UserID {
		return ErrForbidden
	}

	if err := h.messages.DeleteMessage(ctx, messageID); err != nil {
		return err
	}

	h.fanout(roomID, events.NewMessageDeleted(messageID, roomID), nil)
	return nil
}

// Typing broadcasts the indicator to everyone in the room except the
// typist's own sockets. No persistence.
func (h *Handler) Typing(roomID, userID string, isTyping bool) error {
	if roomID == "" {
		return invalid("roomId", "must not be empty")
	}

	exclude := make(map[string]struct{})
	for _, socketID := range h.reg.UserSockets(userID) {
		exclude[socketID] = struct{}{}
	}
	h.fanout(roomID, events.NewUserTyping(roomID, userID, isTyping), exclude)
	return nil
}

// fanout snapshots the room's socket set and delivers to each socket
// not excluded. The snapshot happens immediately before delivery; a
// socket gone by delivery time silently misses the event.
func (h *Handler) fanout(roomID string, env events.Envelope, exclude map[string]struct{}) {
	sockets := h.reg.RoomSockets(roomID)
	for _, socketID := range sockets {
		if _, skip := exclude[socketID]; skip {
			continue
		}
		h.deliver.Deliver(socketID, env)
	}

	if h.audit != nil {
		h.queue.Enqueue(outbox.Task{Name: "event-audit", Run: func(ctx context.Context) error {
			return h.audit.Publish(ctx, roomID, env)
		}})
	}
}

// queueReplyNotification hands the reply notification to the outbox.
// Its failure is logged there and never reaches the sender.
func (h *Handler) queueReplyNotification(msg *models.Message, senderName string) {
	repliedTo := *msg.ReplyTo
	h.queue.Enqueue(outbox.Task{Name: "reply-notification", Run: func(ctx context.Context) error {
		replied, err := h.messages.GetMessageByID(ctx, repliedTo)
		if err != nil {
			return err
		}
		if replied.AuthorID == nil {
			return nil
		}
		if msg.AuthorID != nil && *replied.AuthorID == *msg.AuthorID {
			// Replying to yourself is not news.
			return nil
		}

		n, err := h.notifs.CreateNotification(ctx, *replied.AuthorID, "reply",
			senderName+" replied to your message", msg.Body)
		if err != nil {
			return err
		}
		if h.pusher != nil {
			h.pusher.PushNotification(*replied.AuthorID, n)
		}
		slog.Debug("reply notification created", "messageID", msg.ID, "recipient", *replied.AuthorID)
		return nil
	}})
}
