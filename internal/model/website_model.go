package model

import (
	"time"

	"github.com/google/uuid"
)

type Website struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Domain    string    `gorm:"type:text;not null"`
	PublicKey string    `gorm:"type:text;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Website) TableName() string {
	return "websites"
}
