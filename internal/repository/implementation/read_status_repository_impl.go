package implementation

import (
	"context"
	"errors"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/mapper"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ReadStatusRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewReadStatusRepository(db *gorm.DB) contract.ReadStatusRepository {
	return &ReadStatusRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ReadStatusRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReadStatusRepositoryImpl) Create(ctx context.Context, status *entity.ReadStatus) error {
	m := r.mapper.ReadStatusToModel(status)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*status = *r.mapper.ReadStatusToEntity(m)
	return nil
}

func (r *ReadStatusRepositoryImpl) Update(ctx context.Context, status *entity.ReadStatus) error {
	m := r.mapper.ReadStatusToModel(status)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*status = *r.mapper.ReadStatusToEntity(m)
	return nil
}

func (r *ReadStatusRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReadStatus, error) {
	var m model.ReadStatus
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ReadStatusToEntity(&m), nil
}

func (r *ReadStatusRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReadStatus, error) {
	var models []*model.ReadStatus
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	statuses := make([]*entity.ReadStatus, len(models))
	for i, m := range models {
		statuses[i] = r.mapper.ReadStatusToEntity(m)
	}
	return statuses, nil
}

func (r *ReadStatusRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReadStatus{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
