package service

import (
	"context"
	"errors"
	"time"

	"github.com/dgarcia/dashboard-api/internal/auth"
	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/dgarcia/dashboard-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUserHasAnalyses = errors.New("user still owns analyses")
)

type UserService struct {
	store repository.Store
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

type CreateUserInput struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
}

type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Password  *string
	Active    *bool
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.Users().GetAll(ctx)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	taken, err := uow.Users().Exists(ctx, "username = ?", input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	// The unique index on username is the real enforcement point; the
	// Exists check above only gives a friendlier fast path.
	if err := uow.Users().Add(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if _, err := uow.Complete(ctx); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Update overwrites only the supplied fields; nil fields keep their
// prior values.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	now := time.Now().UTC()
	user.ModifiedAt = &now

	if err := uow.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	if _, err := uow.Complete(ctx); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the account. Accounts that still own analyses cannot be
// deleted; the foreign key restricts the delete and the service reports
// it as a conflict before hitting the constraint.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := uow.Users().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	owns, err := uow.Analyses().Exists(ctx, "user_id = ?", id)
	if err != nil {
		return err
	}
	if owns {
		return ErrUserHasAnalyses
	}

	if err := uow.Users().Delete(ctx, id); err != nil {
		return err
	}
	_, err = uow.Complete(ctx)
	return err
}
