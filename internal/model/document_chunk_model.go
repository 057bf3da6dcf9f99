package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is append-only: ingestion writes the full chunk set for a
// document once and never re-indexes in place. Rows disappear only through
// the document cascade delete.
//
// Embedding is declared as a pgvector column but scanned back in its textual
// form ("[0.1,0.2,...]"). The mapper resolves it into a numeric vector; a
// row that fails to parse is retrievable-by-skip, not fatal.
type DocumentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	WebsiteId  uuid.UUID `gorm:"type:uuid;not null;index"` // Tenant ownership for data isolation
	ChunkIndex int       `gorm:"not null;default:0"`       // 0-based, unique per document
	Content    string    `gorm:"type:text;not null"`
	Embedding  string    `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
