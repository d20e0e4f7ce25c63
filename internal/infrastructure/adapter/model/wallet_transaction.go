package model

import (
	"time"
)

// WalletTransaction is the database model for ledger lines. Rows are
// append-only; status and the late-arriving external reference are the only
// mutable columns.
type WalletTransaction struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	WalletID          uint64    `gorm:"not null;index"`
	Type              string    `gorm:"not null;size:50;index"`
	AmountCents       int64     `gorm:"not null"`
	Status            string    `gorm:"not null;size:50"`
	Description       string    `gorm:"type:text"`
	ExternalReference string    `gorm:"size:255;index"`
	CreatedAt         time.Time `gorm:"not null"`

	Wallet Wallet `gorm:"foreignKey:WalletID;references:ID"`
}

// TableName specifies the table name for WalletTransaction.
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
