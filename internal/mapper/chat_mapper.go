package mapper

import (
	"encoding/json"

	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

type chatMeta struct {
	PageURL string `json:"page_url,omitempty"`
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	var meta chatMeta
	if len(c.Meta) > 0 {
		// Malformed meta is not worth failing a read over
		_ = json.Unmarshal(c.Meta, &meta)
	}

	return &entity.Chat{
		Id:        c.Id,
		WebsiteId: c.WebsiteId,
		SessionId: c.SessionId,
		VisitorId: c.VisitorId,
		PageURL:   meta.PageURL,
		StartedAt: c.StartedAt,
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	var meta datatypes.JSON
	if c.PageURL != "" {
		raw, err := json.Marshal(chatMeta{PageURL: c.PageURL})
		if err == nil {
			meta = raw
		}
	}

	return &model.Chat{
		Id:        c.Id,
		WebsiteId: c.WebsiteId,
		SessionId: c.SessionId,
		VisitorId: c.VisitorId,
		Meta:      meta,
		StartedAt: c.StartedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	return &entity.Message{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	return &model.Message{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
