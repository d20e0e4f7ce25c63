package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/model"
)

// ContributionRepository implements persistence.ContributionRepository using GORM.
type ContributionRepository struct {
	db         *gorm.DB
	logger     coreport.Logger
	classifier *ErrorClassifier
}

// NewContributionRepository creates a ContributionRepository.
func NewContributionRepository(db *gorm.DB, logger coreport.Logger) *ContributionRepository {
	return &ContributionRepository{
		db:         db,
		logger:     logger,
		classifier: NewErrorClassifier(),
	}
}

func contributionModelToEntity(m *model.Contribution) (*entity.Contribution, error) {
	c := &entity.Contribution{
		ID:            m.ID,
		FundableID:    m.FundableID,
		ContributorID: m.ContributorID,
		AmountCents:   m.AmountCents,
		Provider:      entity.CaptureProvider(m.Provider),
		Status:        entity.ContributionStatus(m.Status),
		FeeCents:      m.FeeCents,
		FailureCause:  m.FailureCause,
		CreatedAt:     m.CreatedAt,
		SettledAt:     m.SettledAt,
	}
	if m.ExternalTransactionID != nil {
		c.ExternalTransactionID = *m.ExternalTransactionID
	}
	if m.FeeRate != nil {
		rate, err := decimal.NewFromString(*m.FeeRate)
		if err != nil {
			return nil, fmt.Errorf("%w: stored fee rate %q is not decimal", errs.ErrInternalServer, *m.FeeRate)
		}
		c.FeeRate = &rate
	}
	return c, nil
}

func contributionEntityToModel(c *entity.Contribution) *model.Contribution {
	m := &model.Contribution{
		ID:            c.ID,
		FundableID:    c.FundableID,
		ContributorID: c.ContributorID,
		AmountCents:   c.AmountCents,
		Provider:      string(c.Provider),
		Status:        string(c.Status),
		FeeCents:      c.FeeCents,
		FailureCause:  c.FailureCause,
		CreatedAt:     c.CreatedAt,
		SettledAt:     c.SettledAt,
	}
	// An uncaptured contribution carries no provider reference; the column
	// stays NULL so the unique index never collides on empty ids.
	if c.ExternalTransactionID != "" {
		ref := c.ExternalTransactionID
		m.ExternalTransactionID = &ref
	}
	if c.FeeRate != nil {
		rate := c.FeeRate.String()
		m.FeeRate = &rate
	}
	return m
}

// Create inserts a pending contribution.
func (r *ContributionRepository) Create(ctx context.Context, contribution *entity.Contribution) error {
	m := contributionEntityToModel(contribution)
	if result := r.db.WithContext(ctx).Create(m); result.Error != nil {
		if r.classifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrDuplicateContribution
		}
		r.logger.Error("Database error when creating contribution", map[string]any{
			"fundable_id": contribution.FundableID,
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	contribution.ID = m.ID
	return nil
}

// GetByID retrieves a contribution by internal id.
func (r *ContributionRepository) GetByID(ctx context.Context, id uint64) (*entity.Contribution, error) {
	var m model.Contribution
	if result := r.db.WithContext(ctx).First(&m, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrContributionNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return contributionModelToEntity(&m)
}

// GetPendingByRef retrieves the PENDING contribution for a provider
// reference with an exclusive row lock. A terminal or unknown reference
// returns ErrContributionNotFound, which settlement treats as a replay.
func (r *ContributionRepository) GetPendingByRef(ctx context.Context, ref entity.ProviderRef) (*entity.Contribution, error) {
	var m model.Contribution
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider = ? AND external_transaction_id = ? AND status = ?",
			string(ref.Provider), ref.ExternalTransactionID, string(entity.ContributionPending)).
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrContributionNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return contributionModelToEntity(&m)
}

// Update persists status, fee stamp and failure cause.
func (r *ContributionRepository) Update(ctx context.Context, contribution *entity.Contribution) error {
	m := contributionEntityToModel(contribution)
	result := r.db.WithContext(ctx).Model(&model.Contribution{}).
		Where("id = ?", contribution.ID).
		Updates(map[string]any{
			"status":        m.Status,
			"fee_rate":      m.FeeRate,
			"fee_cents":     m.FeeCents,
			"failure_cause": m.FailureCause,
			"settled_at":    m.SettledAt,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrContributionNotFound
	}
	return nil
}
