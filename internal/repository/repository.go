package repository

import (
	"context"

	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/google/uuid"
)

// Repository is the uniform CRUD surface over one entity type. Predicate
// queries (Find, Exists) take a condition evaluated by the backing store,
// e.g. Find(ctx, "username = ?", name). Writes are staged on the owning
// unit of work's transaction and become visible to other requests only
// after Complete.
type Repository[T any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	GetAll(ctx context.Context) ([]*T, error)
	Find(ctx context.Context, query string, args ...any) ([]*T, error)
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	// Delete removes the row with the given id. A missing id is not an
	// error; it simply affects zero rows.
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, query string, args ...any) (bool, error)
}

// UnitOfWork owns one repository per entity type and one underlying
// transaction. Complete commits every staged write atomically and
// returns the total number of rows affected. Rollback is safe to defer:
// it is a no-op once Complete has succeeded.
type UnitOfWork interface {
	Users() Repository[domain.User]
	Analyses() Repository[domain.Analysis]
	Complete(ctx context.Context) (int64, error)
	Rollback() error
}

// Store opens one unit of work per logical request.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
