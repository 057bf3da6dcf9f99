package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WebsiteId      uuid.UUID `gorm:"type:uuid;not null;index"` // Tenant ownership for data isolation
	FileName       string    `gorm:"type:text;not null"`
	StoragePath    string    `gorm:"type:text"`
	MimeType       string    `gorm:"type:text"`
	SizeBytes      int64     `gorm:"default:0"`
	ChecksumSha256 string    `gorm:"type:text"`
	Status         string    `gorm:"type:text;default:'pending'"` // pending | ready | failed
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
