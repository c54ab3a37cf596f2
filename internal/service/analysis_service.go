package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/dgarcia/dashboard-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisService struct {
	store repository.Store
}

func NewAnalysisService(store repository.Store) *AnalysisService {
	return &AnalysisService{store: store}
}

type CreateAnalysisInput struct {
	Name         string
	Data         json.RawMessage
	Filters      json.RawMessage
	InvoiceCount int
	TotalValue   decimal.Decimal
}

type UpdateAnalysisInput struct {
	Name         *string
	Filters      json.RawMessage
	InvoiceCount *int
	TotalValue   *decimal.Decimal
}

// List returns all analyses, or only those owned by ownerID when the
// filter is supplied. Which callers may omit the filter is the HTTP
// boundary's policy, not this service's.
func (s *AnalysisService) List(ctx context.Context, ownerID *uuid.UUID) ([]*domain.Analysis, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if ownerID != nil {
		return uow.Analyses().Find(ctx, "user_id = ?", *ownerID)
	}
	return uow.Analyses().GetAll(ctx)
}

func (s *AnalysisService) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	analysis, err := uow.Analyses().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return analysis, nil
}

// Create persists a new analysis owned by ownerID. The payload is stored
// byte for byte; the returned detail is re-read after commit so it
// reflects any store-computed defaults.
func (s *AnalysisService) Create(ctx context.Context, input CreateAnalysisInput, ownerID uuid.UUID) (*domain.Analysis, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	analysis := &domain.Analysis{
		ID:           uuid.New(),
		Name:         input.Name,
		UserID:       ownerID,
		Data:         datatypes.JSON(input.Data),
		InvoiceCount: input.InvoiceCount,
		TotalValue:   input.TotalValue,
		CreatedAt:    time.Now().UTC(),
	}
	if input.Filters != nil {
		analysis.Filters = datatypes.JSON(input.Filters)
	}

	if err := uow.Analyses().Add(ctx, analysis); err != nil {
		return nil, err
	}
	if _, err := uow.Complete(ctx); err != nil {
		return nil, err
	}

	return s.Get(ctx, analysis.ID)
}

// Update overwrites only the supplied fields. The payload and the owner
// are immutable after creation.
func (s *AnalysisService) Update(ctx context.Context, id uuid.UUID, input UpdateAnalysisInput) (*domain.Analysis, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	analysis, err := uow.Analyses().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		analysis.Name = *input.Name
	}
	if input.Filters != nil {
		analysis.Filters = datatypes.JSON(input.Filters)
	}
	if input.InvoiceCount != nil {
		analysis.InvoiceCount = *input.InvoiceCount
	}
	if input.TotalValue != nil {
		analysis.TotalValue = *input.TotalValue
	}

	now := time.Now().UTC()
	analysis.ModifiedAt = &now

	if err := uow.Analyses().Update(ctx, analysis); err != nil {
		return nil, err
	}
	if _, err := uow.Complete(ctx); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *AnalysisService) Delete(ctx context.Context, id uuid.UUID) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := uow.Analyses().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}

	if err := uow.Analyses().Delete(ctx, id); err != nil {
		return err
	}
	_, err = uow.Complete(ctx)
	return err
}
