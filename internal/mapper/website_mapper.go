package mapper

import (
	"time"

	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/model"
)

type WebsiteMapper struct{}

func NewWebsiteMapper() *WebsiteMapper {
	return &WebsiteMapper{}
}

func (m *WebsiteMapper) ToEntity(w *model.Website) *entity.Website {
	if w == nil {
		return nil
	}

	var updatedAt *time.Time
	if !w.UpdatedAt.IsZero() {
		t := w.UpdatedAt
		updatedAt = &t
	}

	return &entity.Website{
		Id:        w.Id,
		Domain:    w.Domain,
		PublicKey: w.PublicKey,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WebsiteMapper) ToModel(w *entity.Website) *model.Website {
	if w == nil {
		return nil
	}

	var updatedAt time.Time
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}

	return &model.Website{
		Id:        w.Id,
		Domain:    w.Domain,
		PublicKey: w.PublicKey,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
	}
}
