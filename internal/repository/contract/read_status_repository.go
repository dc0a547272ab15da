package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
)

type ReadStatusRepository interface {
	Create(ctx context.Context, status *entity.ReadStatus) error
	Update(ctx context.Context, status *entity.ReadStatus) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReadStatus, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReadStatus, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
