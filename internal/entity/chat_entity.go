package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type Chat struct {
	Id        uuid.UUID
	WebsiteId uuid.UUID
	SessionId string
	VisitorId string
	PageURL   string
	StartedAt time.Time
}

type Message struct {
	Id        uuid.UUID
	ChatId    uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}
