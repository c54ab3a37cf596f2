package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRepository is the single generic implementation behind every
// entity-specific repository. It runs on the unit of work's transaction
// and accumulates affected-row counts into the shared counter.
type gormRepository[T any] struct {
	tx       *gorm.DB
	affected *int64
}

func (r *gormRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.tx.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *gormRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	if err := r.tx.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *gormRepository[T]) Find(ctx context.Context, query string, args ...any) ([]*T, error) {
	var entities []*T
	if err := r.tx.WithContext(ctx).Where(query, args...).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *gormRepository[T]) Add(ctx context.Context, entity *T) error {
	res := r.tx.WithContext(ctx).Create(entity)
	*r.affected += res.RowsAffected
	return res.Error
}

func (r *gormRepository[T]) Update(ctx context.Context, entity *T) error {
	res := r.tx.WithContext(ctx).Save(entity)
	*r.affected += res.RowsAffected
	return res.Error
}

func (r *gormRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.tx.WithContext(ctx).Delete(new(T), "id = ?", id)
	*r.affected += res.RowsAffected
	return res.Error
}

func (r *gormRepository[T]) Exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	err := r.tx.WithContext(ctx).Model(new(T)).Where(query, args...).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
