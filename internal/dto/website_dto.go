package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWebsiteRequest struct {
	Domain string `json:"domain" validate:"required,fqdn"`
}

type WebsiteResponse struct {
	Id        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}
