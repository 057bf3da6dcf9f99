package contract

import (
	"context"

	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	UpdateVisitor(ctx context.Context, chatId uuid.UUID, visitorId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// FindRecentByChat returns the newest limit messages in chronological
	// order, filtered to the given roles.
	FindRecentByChat(ctx context.Context, chatId uuid.UUID, limit int, roles []string) ([]*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
