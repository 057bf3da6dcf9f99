package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Chat is one visitor conversation with one tenant's assistant, keyed by
// the widget-supplied session id.
type Chat struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WebsiteId uuid.UUID      `gorm:"type:uuid;not null;index:idx_chats_website_session"`
	SessionId string         `gorm:"type:text;not null;index:idx_chats_website_session"`
	VisitorId string         `gorm:"type:text"`
	Meta      datatypes.JSON `gorm:"type:jsonb"` // page_url and other widget metadata
	StartedAt time.Time      `gorm:"autoCreateTime"`
}

func (Chat) TableName() string {
	return "chats"
}
