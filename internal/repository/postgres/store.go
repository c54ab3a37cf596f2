package postgres

import (
	"context"

	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/dgarcia/dashboard-api/internal/repository"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	uow := &unitOfWork{tx: tx}
	uow.users = &gormRepository[domain.User]{tx: tx, affected: &uow.affected}
	uow.analyses = &gormRepository[domain.Analysis]{tx: tx, affected: &uow.affected}
	return uow, nil
}

type unitOfWork struct {
	tx        *gorm.DB
	affected  int64
	committed bool
	users     repository.Repository[domain.User]
	analyses  repository.Repository[domain.Analysis]
}

func (u *unitOfWork) Users() repository.Repository[domain.User] {
	return u.users
}

func (u *unitOfWork) Analyses() repository.Repository[domain.Analysis] {
	return u.analyses
}

func (u *unitOfWork) Complete(ctx context.Context) (int64, error) {
	if err := u.tx.Commit().Error; err != nil {
		return 0, err
	}
	u.committed = true
	return u.affected, nil
}

func (u *unitOfWork) Rollback() error {
	if u.committed {
		return nil
	}
	return u.tx.Rollback().Error
}
