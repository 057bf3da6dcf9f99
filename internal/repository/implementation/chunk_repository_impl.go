package implementation

import (
	"context"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/mapper"
	"site-assistant-be/internal/model"
	"site-assistant-be/internal/repository/contract"
	"site-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return apperror.NewDatabaseError("bulk insert chunks", err)
	}
	return nil
}

func (r *ChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error; err != nil {
		return apperror.NewDatabaseError("delete chunks by document", err)
	}
	return nil
}

func (r *ChunkRepositoryImpl) FindByWebsite(ctx context.Context, websiteId uuid.UUID, limit int) ([]*entity.Chunk, error) {
	if websiteId == uuid.Nil {
		return nil, apperror.NewRetrievalError("website_id is required", nil)
	}
	if limit <= 0 {
		limit = contract.ChunkFetchLimit
	}

	var models []*model.DocumentChunk
	err := r.db.WithContext(ctx).
		Where("website_id = ?", websiteId).
		Order("created_at ASC, chunk_index ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperror.NewDatabaseError("fetch chunks by website", err)
	}

	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.NewDatabaseError("list chunks", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.NewDatabaseError("count chunks", err)
	}
	return count, nil
}
