package entity

import (
	"time"

	"github.com/google/uuid"
)

type Website struct {
	Id        uuid.UUID
	Domain    string
	PublicKey string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
