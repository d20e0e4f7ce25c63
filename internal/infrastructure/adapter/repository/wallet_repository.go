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

// walletScopedTypes are the ledger line types that enter the wallet balance
// sum. Payout-scoped lines audit the received balance and are excluded.
var walletScopedTypes = []string{
	string(entity.LineDeposit),
	string(entity.LineReceivedToWallet),
	string(entity.LineFundItem),
}

// WalletRepository implements persistence.WalletRepository using GORM.
type WalletRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewWalletRepository creates a WalletRepository.
func NewWalletRepository(db *gorm.DB, tp coreport.TimeProvider, logger coreport.Logger) *WalletRepository {
	return &WalletRepository{db: db, timeProvider: tp, logger: logger}
}

func walletModelToEntity(m *model.Wallet) *entity.Wallet {
	return &entity.Wallet{
		ID:           m.ID,
		RecipientID:  m.RecipientID,
		BalanceCents: m.BalanceCents,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// GetOrCreate returns the recipient's wallet, creating it lazily.
func (r *WalletRepository) GetOrCreate(ctx context.Context, recipientID uint64) (*entity.Wallet, error) {
	var m model.Wallet
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("recipient_id = ?", recipientID).
		First(&m)
	if result.Error == nil {
		return walletModelToEntity(&m), nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	now := r.timeProvider.Now()
	m = model.Wallet{
		RecipientID:  recipientID,
		BalanceCents: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if result := r.db.WithContext(ctx).Create(&m); result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	r.logger.Debug("Wallet created lazily", map[string]any{
		"recipient_id": recipientID,
		"wallet_id":    m.ID,
	})
	return walletModelToEntity(&m), nil
}

// Update persists wallet balance changes.
func (r *WalletRepository) Update(ctx context.Context, wallet *entity.Wallet) error {
	result := r.db.WithContext(ctx).Model(&model.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]any{
			"balance_cents": wallet.BalanceCents,
			"updated_at":    wallet.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrWalletNotFound
	}
	return nil
}

// AppendLine inserts a ledger line.
func (r *WalletRepository) AppendLine(ctx context.Context, line *entity.LedgerLine) error {
	m := model.WalletTransaction{
		WalletID:          line.WalletID,
		Type:              string(line.Type),
		AmountCents:       line.AmountCents,
		Status:            string(line.Status),
		Description:       line.Description,
		ExternalReference: line.ExternalReference,
		CreatedAt:         line.CreatedAt,
	}
	if result := r.db.WithContext(ctx).Create(&m); result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	line.ID = m.ID
	return nil
}

// UpdateLineStatus transitions a line's status; externalRef overwrites the
// stored reference when non-empty.
func (r *WalletRepository) UpdateLineStatus(ctx context.Context, lineID uint64, status entity.LedgerLineStatus, externalRef string) error {
	updates := map[string]any{"status": string(status)}
	if externalRef != "" {
		updates["external_reference"] = externalRef
	}
	result := r.db.WithContext(ctx).Model(&model.WalletTransaction{}).
		Where("id = ?", lineID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrWalletNotFound
	}
	return nil
}

// SumWalletLines sums wallet-scoped line amounts for the invariant audit.
func (r *WalletRepository) SumWalletLines(ctx context.Context, walletID uint64) (int64, error) {
	var sum *int64
	result := r.db.WithContext(ctx).Model(&model.WalletTransaction{}).
		Select("SUM(amount_cents)").
		Where("wallet_id = ? AND type IN ? AND status = ?", walletID, walletScopedTypes, string(entity.LineCompleted)).
		Scan(&sum)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
