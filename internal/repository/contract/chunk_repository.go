package contract

import (
	"context"

	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChunkFetchLimit bounds the worst-case linear scan for one tenant.
// Tenants with more chunks than this get a silently truncated candidate
// set; there is no pagination in this design.
const ChunkFetchLimit = 1200

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	// FindByWebsite returns up to limit chunks for the tenant, ordered by
	// insertion. A tenant with no chunks yields an empty slice, not an error.
	FindByWebsite(ctx context.Context, websiteId uuid.UUID, limit int) ([]*entity.Chunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
