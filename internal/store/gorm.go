package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"arena-chat-service/internal/models"
)

// GormStore implements every store interface on top of a gorm
// connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateMessage(ctx context.Context, m *models.Message) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return wrap("create message", err)
	}
	return nil
}

func (s *GormStore) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap("get message", ErrNotFound)
	}
	if err != nil {
		return nil, wrap("get message", err)
	}
	return &m, nil
}

func (s *GormStore) UpdateMessage(ctx context.Context, id, body string) (*models.Message, error) {
	var m models.Message
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap("update message", ErrNotFound)
	}
	if err != nil {
		return nil, wrap("update message", err)
	}

	m.Body = body
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, wrap("update message", err)
	}
	return &m, nil
}

func (s *GormStore) DeleteMessage(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id).Error; err != nil {
		return wrap("delete message", err)
	}
	return nil
}

func (s *GormStore) CreateNotification(ctx context.Context, userID, kind, title, text string) (*models.Notification, error) {
	n := &models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Text:   text,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, wrap("create notification", err)
	}
	return n, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap("get user", ErrNotFound)
	}
	if err != nil {
		return nil, wrap("get user", err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap("get user", ErrNotFound)
	}
	if err != nil {
		return nil, wrap("get user", err)
	}
	return &u, nil
}

func (s *GormStore) CreateFriendRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	fr := &models.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     models.FriendStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(fr).Error; err != nil {
		return nil, wrap("create friend request", err)
	}
	return fr, nil
}

func (s *GormStore) GetFriendRequestByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := s.db.WithContext(ctx).First(&fr, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap("get friend request", ErrNotFound)
	}
	if err != nil {
		return nil, wrap("get friend request", err)
	}
	return &fr, nil
}

func (s *GormStore) UpdateFriendRequestStatus(ctx context.Context, id, status string) (*models.FriendRequest, error) {
	fr, err := s.GetFriendRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fr.Status = status
	if err := s.db.WithContext(ctx).Save(fr).Error; err != nil {
		return nil, wrap("update friend request", err)
	}
	return fr, nil
}
