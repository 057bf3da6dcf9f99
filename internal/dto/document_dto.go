package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	WebsiteId  uuid.UUID `json:"website_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Status     string    `json:"status"`
	ChunkCount int64     `json:"chunk_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListDocumentsRequest struct {
	Page    int `query:"page" validate:"omitempty,min=1"`
	PerPage int `query:"per_page" validate:"omitempty,min=1,max=100"`
}

type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
}

// PublishIngestDocumentMessage is the payload queued for the ingestion
// consumer after an upload is accepted.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type IngestTextRequest struct {
	WebsiteId string `json:"website_id" validate:"required,uuid4"`
	FileName  string `json:"file_name" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
}
