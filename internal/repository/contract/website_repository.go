package contract

import (
	"context"

	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WebsiteRepository interface {
	Create(ctx context.Context, website *entity.Website) error
	Update(ctx context.Context, website *entity.Website) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Website, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Website, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
