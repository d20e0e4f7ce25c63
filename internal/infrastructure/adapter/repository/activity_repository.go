package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/model"
)

// ActivityRepository records activity-feed entries. Writes run outside the
// settlement transaction and are best-effort.
type ActivityRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewActivityRepository creates an ActivityRepository.
func NewActivityRepository(db *gorm.DB, logger coreport.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

// Record inserts an activity entry.
func (r *ActivityRepository) Record(ctx context.Context, entry *persistence.ActivityEntry) error {
	m := model.Activity{
		RecipientID:   entry.RecipientID,
		FundableID:    entry.FundableID,
		ContributorID: entry.ContributorID,
		Kind:          entry.Kind,
		Amount:        entry.Amount,
		CreatedAt:     entry.CreatedAt,
	}
	if result := r.db.WithContext(ctx).Create(&m); result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}
