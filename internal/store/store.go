// Package store is the persistence collaborator: an opaque record
// store for messages, notifications, users and friend requests.
package store

import (
	"context"
	"errors"
	"fmt"

	"arena-chat-service/internal/models"
)

// ErrNotFound marks a lookup that matched no record.
var ErrNotFound = errors.New("record not found")

// StorageError wraps a backend failure with the failing operation.
// Callers surface it for primary operations and swallow-and-log it for
// best-effort side effects.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	UpdateMessage(ctx context.Context, id, body string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, userID, kind, title, text string) (*models.Notification, error)
}

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type FriendStore interface {
	CreateFriendRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error)
	GetFriendRequestByID(ctx context.Context, id string) (*models.FriendRequest, error)
	UpdateFriendRequestStatus(ctx context.Context, id, status string) (*models.FriendRequest, error)
}
