package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies a server-emitted realtime event. The set is closed:
// every event the service can deliver has exactly one Type constant and
// one fixed payload shape, built only through the constructors below.
type Type string

const (
	TypeJoinedRoom            Type = "joined_room"
	TypeLeftRoom              Type = "left_room"
	TypeMessageReceived       Type = "message_received"
	TypeMessageEdited         Type = "message_edited"
	TypeMessageDeleted        Type = "message_deleted"
	TypeUserTyping            Type = "user_typing"
	TypeUserOnline            Type = "user_online"
	TypeUserOffline           Type = "user_offline"
	TypeNotification          Type = "notification_received"
	TypeFriendRequestReceived Type = "friend_request_received"
	TypeFriendRequestAccepted Type = "friend_request_accepted"
	TypeFriendRequestRejected Type = "friend_request_rejected"
	TypeError                 Type = "error"
)

func (t Type) String() string {
	return string(t)
}

// Envelope is the wire frame for every outbound event.
type Envelope struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload"`
}

func newEnvelope(t Type, payload any) Envelope {
	return Envelope{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type MessagePayload struct {
	MessageID  string  `json:"messageId"`
	RoomID     string  `json:"roomId"`
	AuthorID   *string `json:"authorId"`
	AuthorName string  `json:"authorName"`
	Body       string  `json:"body"`
	ReplyToID  *string `json:"replyToId,omitempty"`
	URL        *string `json:"url,omitempty"`
	FileName   *string `json:"fileName,omitempty"`
	SentAt     int64   `json:"sentAt"`
}

type MessageEditedPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Body      string `json:"body"`
	EditedAt  int64  `json:"editedAt"`
}

// MessageDeletedPayload intentionally carries only the id, never the
// deleted content.
type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type PresencePayload struct {
	UserID string `json:"userId"`
}

type NotificationPayload struct {
	NotificationID string `json:"notificationId"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Text           string `json:"text"`
	CreatedAt      int64  `json:"createdAt"`
}

type FriendRequestPayload struct {
	RequestID  string `json:"requestId"`
	FromUserID string `json:"fromUserId"`
	FromName   string `json:"fromName"`
	ToUserID   string `json:"toUserId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewJoinedRoom(roomID, userID string) Envelope {
	return newEnvelope(TypeJoinedRoom, RoomPayload{RoomID: roomID, UserID: userID})
}

func NewLeftRoom(roomID, userID string) Envelope {
	return newEnvelope(TypeLeftRoom, RoomPayload{RoomID: roomID, UserID: userID})
}

func NewMessageReceived(p MessagePayload) Envelope {
	return newEnvelope(TypeMessageReceived, p)
}

func NewMessageEdited(messageID, roomID, body string, editedAt time.Time) Envelope {
	return newEnvelope(TypeMessageEdited, MessageEditedPayload{
		MessageID: messageID,
		RoomID:    roomID,
		Body:      body,
		EditedAt:  editedAt.Unix(),
	})
}

func NewMessageDeleted(messageID, roomID string) Envelope {
	return newEnvelope(TypeMessageDeleted, MessageDeletedPayload{MessageID: messageID, RoomID: roomID})
}

func NewUserTyping(roomID, userID string, isTyping bool) Envelope {
	return newEnvelope(TypeUserTyping, TypingPayload{RoomID: roomID, UserID: userID, IsTyping: isTyping})
}

func NewUserOnline(userID string) Envelope {
	return newEnvelope(TypeUserOnline, PresencePayload{UserID: userID})
}

func NewUserOffline(userID string) Envelope {
	return newEnvelope(TypeUserOffline, PresencePayload{UserID: userID})
}

func NewNotification(id, kind, title, text string, createdAt time.Time) Envelope {
	return newEnvelope(TypeNotification, NotificationPayload{
		NotificationID: id,
		Kind:           kind,
		Title:          title,
		Text:           text,
		CreatedAt:      createdAt.Unix(),
	})
}

func NewFriendRequest(t Type, p FriendRequestPayload) Envelope {
	return newEnvelope(t, p)
}

func NewError(code, message string) Envelope {
	return newEnvelope(TypeError, ErrorPayload{Code: code, Message: message})
}
