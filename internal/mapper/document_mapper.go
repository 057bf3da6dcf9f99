package mapper

import (
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	return &entity.Document{
		Id:             d.Id,
		WebsiteId:      d.WebsiteId,
		FileName:       d.FileName,
		StoragePath:    d.StoragePath,
		MimeType:       d.MimeType,
		SizeBytes:      d.SizeBytes,
		ChecksumSha256: d.ChecksumSha256,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	return &model.Document{
		Id:             d.Id,
		WebsiteId:      d.WebsiteId,
		FileName:       d.FileName,
		StoragePath:    d.StoragePath,
		MimeType:       d.MimeType,
		SizeBytes:      d.SizeBytes,
		ChecksumSha256: d.ChecksumSha256,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}

func (m *DocumentMapper) ToEntities(models []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(models))
	for i, d := range models {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
