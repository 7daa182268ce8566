package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// Message is a persisted chat message. RoomID is the canonical room
// identifier the message was sent to (team or private scope). AuthorID
// is nil for system-authored messages.
type Message struct {
	ID       string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	RoomID   string  `gorm:"index;not null" json:"roomId"`
	AuthorID *string `gorm:"type:varchar(36);index" json:"authorId"`

	Body     string  `gorm:"type:text;not null" json:"body"`
	ReplyTo  *string `gorm:"type:varchar(36)" json:"replyTo,omitempty"`
	URL      *string `json:"url,omitempty"`      // optional attachment
	FileName *string `json:"fileName,omitempty"` // optional attachment

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Notification is a persisted user notification. Delivery over a live
// socket is best-effort; the record is the source of truth.
type Notification struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(36);index;not null" json:"userId"`
	Kind   string `gorm:"type:varchar(64);not null" json:"kind"`
	Title  string `gorm:"not null" json:"title"`
	Text   string `gorm:"type:text" json:"text"`
	Read   bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
