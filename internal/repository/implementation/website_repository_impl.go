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

type WebsiteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WebsiteMapper
}

func NewWebsiteRepository(db *gorm.DB) contract.WebsiteRepository {
	return &WebsiteRepositoryImpl{
		db:     db,
		mapper: mapper.NewWebsiteMapper(),
	}
}

func (r *WebsiteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WebsiteRepositoryImpl) Create(ctx context.Context, website *entity.Website) error {
	m := r.mapper.ToModel(website)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.NewDatabaseError("create website", err)
	}
	*website = *r.mapper.ToEntity(m)
	return nil
}

func (r *WebsiteRepositoryImpl) Update(ctx context.Context, website *entity.Website) error {
	m := r.mapper.ToModel(website)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return apperror.NewDatabaseError("update website", err)
	}
	*website = *r.mapper.ToEntity(m)
	return nil
}

func (r *WebsiteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&model.Website{}, id).Error; err != nil {
		return apperror.NewDatabaseError("delete website", err)
	}
	return nil
}

func (r *WebsiteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Website, error) {
	var m model.Website
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("find website", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WebsiteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Website, error) {
	var models []*model.Website
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.NewDatabaseError("list websites", err)
	}
	entities := make([]*entity.Website, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *WebsiteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Website{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.NewDatabaseError("count websites", err)
	}
	return count, nil
}
