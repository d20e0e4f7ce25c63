package model

import (
	"time"
)

// Contribution is the database model for contributions. The composite unique
// index on (provider, external_transaction_id) backs the settlement
// idempotency key. ExternalTransactionID stays NULL until the provider
// captures the charge; NULLs are index-distinct, so any number of uncaptured
// rows per provider can coexist.
type Contribution struct {
	ID                    uint64  `gorm:"primaryKey;autoIncrement"`
	FundableID            uint64  `gorm:"not null;index"`
	ContributorID         *uint64 `gorm:"index"`
	AmountCents           int64   `gorm:"not null"`
	Provider              string  `gorm:"not null;size:50;uniqueIndex:idx_provider_ref,priority:1"`
	ExternalTransactionID *string `gorm:"size:255;uniqueIndex:idx_provider_ref,priority:2"`
	Status                string  `gorm:"not null;size:50;index"`
	FeeRate               *string `gorm:"size:20"`
	FeeCents              *int64
	FailureCause          string    `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null"`
	SettledAt             *time.Time

	Fundable Fundable `gorm:"foreignKey:FundableID;references:ID"`
}

// TableName specifies the table name for Contribution.
func (Contribution) TableName() string {
	return "contributions"
}
