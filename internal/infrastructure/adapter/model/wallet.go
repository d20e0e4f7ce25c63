package model

import (
	"time"
)

// Wallet is the database model for the recipient's spending balance. One
// wallet per recipient, created lazily on first use.
type Wallet struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	RecipientID  uint64    `gorm:"not null;uniqueIndex"`
	BalanceCents int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`

	Recipient Recipient `gorm:"foreignKey:RecipientID;references:ID"`
}

// TableName specifies the table name for Wallet.
func (Wallet) TableName() string {
	return "wallets"
}
