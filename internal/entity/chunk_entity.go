package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a bounded slice of a document's text, independently embeddable
// and retrievable. Embedding is nil when the stored value was absent or
// could not be parsed; such chunks are skipped by scoring, never fatal.
type Chunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	WebsiteId  uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}
