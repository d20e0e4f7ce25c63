package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/model"
)

// FundableRepository implements persistence.FundableRepository using GORM.
type FundableRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewFundableRepository creates a FundableRepository.
func NewFundableRepository(db *gorm.DB, logger coreport.Logger) *FundableRepository {
	return &FundableRepository{db: db, logger: logger}
}

func fundableModelToEntity(m *model.Fundable) *entity.Fundable {
	return &entity.Fundable{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Kind:        entity.FundableKind(m.Kind),
		EventID:     m.EventID,
		GoalCents:   m.GoalCents,
		FundedCents: m.FundedCents,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *FundableRepository) handleError(operation string, err error, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrFundableNotFound
	}
	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"fundable_id": id,
		"error":       err.Error(),
	})
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// GetByID retrieves a fundable without locking.
func (r *FundableRepository) GetByID(ctx context.Context, id uint64) (*entity.Fundable, error) {
	var m model.Fundable
	if result := r.db.WithContext(ctx).First(&m, id); result.Error != nil {
		return nil, r.handleError("getting fundable", result.Error, id)
	}
	return fundableModelToEntity(&m), nil
}

// GetForUpdate retrieves a fundable with an exclusive row lock.
func (r *FundableRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Fundable, error) {
	var m model.Fundable
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id)
	if result.Error != nil {
		return nil, r.handleError("locking fundable", result.Error, id)
	}
	return fundableModelToEntity(&m), nil
}

// Create inserts a fundable row.
func (r *FundableRepository) Create(ctx context.Context, fundable *entity.Fundable) error {
	m := model.Fundable{
		ID:          fundable.ID,
		OwnerID:     fundable.OwnerID,
		Kind:        string(fundable.Kind),
		EventID:     fundable.EventID,
		GoalCents:   fundable.GoalCents,
		FundedCents: fundable.FundedCents,
		CreatedAt:   fundable.CreatedAt,
		UpdatedAt:   fundable.UpdatedAt,
	}
	if result := r.db.WithContext(ctx).Create(&m); result.Error != nil {
		return r.handleError("creating fundable", result.Error, fundable.ID)
	}
	fundable.ID = m.ID
	return nil
}

// Update persists funded amount changes.
func (r *FundableRepository) Update(ctx context.Context, fundable *entity.Fundable) error {
	result := r.db.WithContext(ctx).Model(&model.Fundable{}).
		Where("id = ?", fundable.ID).
		Updates(map[string]any{
			"funded_cents": fundable.FundedCents,
			"updated_at":   fundable.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleError("updating fundable", result.Error, fundable.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrFundableNotFound
	}
	return nil
}
