package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusPending = "pending"
	DocumentStatusReady   = "ready"
	DocumentStatusFailed  = "failed"
)

type Document struct {
	Id             uuid.UUID
	WebsiteId      uuid.UUID
	FileName       string
	StoragePath    string
	MimeType       string
	SizeBytes      int64
	ChecksumSha256 string
	Status         string
	CreatedAt      time.Time
}
