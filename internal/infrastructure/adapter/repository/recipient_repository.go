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

// RecipientRepository implements persistence.RecipientRepository using GORM.
type RecipientRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	classifier   *ErrorClassifier
}

// NewRecipientRepository creates a RecipientRepository.
func NewRecipientRepository(db *gorm.DB, tp coreport.TimeProvider, logger coreport.Logger) *RecipientRepository {
	return &RecipientRepository{
		db:           db,
		timeProvider: tp,
		logger:       logger,
		classifier:   NewErrorClassifier(),
	}
}

func recipientModelToEntity(m *model.Recipient) *entity.Recipient {
	r := &entity.Recipient{
		ID:                         m.ID,
		ContributionsReceivedCount: m.ContributionsReceivedCount,
		BankAccountID:              m.BankAccountID,
		BankOnboarded:              m.BankOnboarded,
		VenmoHandle:                m.VenmoHandle,
		PayPalEmail:                m.PayPalEmail,
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
	r.SetReceivedCents(m.ReceivedCents)
	return r
}

func (r *RecipientRepository) handleError(operation string, err error, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrRecipientNotFound
	}
	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"recipient_id": id,
		"error":        err.Error(),
	})
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// GetByID retrieves a recipient without locking.
func (r *RecipientRepository) GetByID(ctx context.Context, id uint64) (*entity.Recipient, error) {
	var m model.Recipient
	if result := r.db.WithContext(ctx).First(&m, id); result.Error != nil {
		return nil, r.handleError("getting recipient", result.Error, id)
	}
	return recipientModelToEntity(&m), nil
}

// GetForUpdate retrieves a recipient with an exclusive row lock.
func (r *RecipientRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Recipient, error) {
	var m model.Recipient
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id)
	if result.Error != nil {
		return nil, r.handleError("locking recipient", result.Error, id)
	}
	return recipientModelToEntity(&m), nil
}

// Create inserts a new recipient row.
func (r *RecipientRepository) Create(ctx context.Context, recipient *entity.Recipient) error {
	m := model.Recipient{
		ID:                         recipient.ID,
		ReceivedCents:              recipient.ReceivedCents(),
		ContributionsReceivedCount: recipient.ContributionsReceivedCount,
		BankAccountID:              recipient.BankAccountID,
		BankOnboarded:              recipient.BankOnboarded,
		VenmoHandle:                recipient.VenmoHandle,
		PayPalEmail:                recipient.PayPalEmail,
		CreatedAt:                  recipient.CreatedAt,
		UpdatedAt:                  recipient.UpdatedAt,
	}
	if result := r.db.WithContext(ctx).Create(&m); result.Error != nil {
		return r.handleError("creating recipient", result.Error, recipient.ID)
	}
	return nil
}

// CreditReceived adds netCents and bumps the lifetime contribution count in
// one guarded UPDATE.
func (r *RecipientRepository) CreditReceived(ctx context.Context, id uint64, netCents int64) (*entity.Recipient, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.Recipient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"received_cents":               gorm.Expr("received_cents + ?", netCents),
			"contributions_received_count": gorm.Expr("contributions_received_count + 1"),
			"updated_at":                   now,
		})
	if result.Error != nil {
		return nil, r.handleError("crediting recipient", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return nil, errs.ErrRecipientNotFound
	}
	return r.GetByID(ctx, id)
}

// DebitReceived subtracts cents only when the balance covers it. The guard
// and the mutation are one statement so concurrent debits cannot overdraw.
func (r *RecipientRepository) DebitReceived(ctx context.Context, id uint64, cents int64) (*entity.Recipient, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.Recipient{}).
		Where("id = ? AND received_cents >= ?", id, cents).
		Updates(map[string]any{
			"received_cents": gorm.Expr("received_cents - ?", cents),
			"updated_at":     now,
		})
	if result.Error != nil {
		return nil, r.handleError("debiting recipient", result.Error, id)
	}
	if result.RowsAffected == 0 {
		// Either the row is missing or the balance is short; distinguish.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, errs.ErrInsufficientBalance
	}
	return r.GetByID(ctx, id)
}

// RefundReceived credits cents back without touching the contribution count.
func (r *RecipientRepository) RefundReceived(ctx context.Context, id uint64, cents int64) (*entity.Recipient, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.Recipient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"received_cents": gorm.Expr("received_cents + ?", cents),
			"updated_at":     now,
		})
	if result.Error != nil {
		return nil, r.handleError("refunding recipient", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return nil, errs.ErrRecipientNotFound
	}
	return r.GetByID(ctx, id)
}
