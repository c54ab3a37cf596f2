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

// EnsureDefaultAdmin provisions the well-known administrative account on
// first run. It is a setup convenience, not a security boundary: the
// credential should be rotated after first login.
func EnsureDefaultAdmin(ctx context.Context, store repository.Store, username, password string) error {
	uow, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	exists, err := uow.Users().Exists(ctx, "username = ?", username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &domain.User{
		ID:           uuid.New(),
		FirstName:    "System",
		LastName:     "Administrator",
		Username:     username,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uow.Users().Add(ctx, admin); err != nil {
		// Concurrent first boots race on the unique index; losing is fine.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	_, err = uow.Complete(ctx)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}
