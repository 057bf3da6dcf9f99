package implementation

import (
	"context"
	"errors"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/mapper"
	"site-assistant-be/internal/model"
	"site-assistant-be/internal/repository/contract"
	"site-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	m := r.mapper.ChatToModel(chat)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.NewDatabaseError("create chat", err)
	}
	*chat = *r.mapper.ChatToEntity(m)
	return nil
}

func (r *ChatRepositoryImpl) UpdateVisitor(ctx context.Context, chatId uuid.UUID, visitorId string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", chatId).
		Update("visitor_id", visitorId).Error
	if err != nil {
		return apperror.NewDatabaseError("backfill chat visitor", err)
	}
	return nil
}

func (r *ChatRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	var m model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("find chat", err)
	}
	return r.mapper.ChatToEntity(&m), nil
}

func (r *ChatRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Chat{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.NewDatabaseError("count chats", err)
	}
	return count, nil
}

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.NewDatabaseError("insert message", err)
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

// FindRecentByChat fetches newest-first then reverses, so a caller always
// replays history to the model in chronological order.
func (r *MessageRepositoryImpl) FindRecentByChat(ctx context.Context, chatId uuid.UUID, limit int, roles []string) ([]*entity.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.WithContext(ctx).
		Where("chat_id = ?", chatId).
		Order("created_at DESC").
		Limit(limit)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	var models []*model.Message
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.NewDatabaseError("fetch recent messages", err)
	}

	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}

	return r.mapper.MessagesToEntities(models), nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.NewDatabaseError("list messages", err)
	}
	return r.mapper.MessagesToEntities(models), nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.NewDatabaseError("count messages", err)
	}
	return count, nil
}
