package model

import (
	"time"
)

// Fundable is the database model for items and events. Funded amounts only
// change inside ledger transactions.
type Fundable struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	OwnerID     uint64  `gorm:"not null;index"`
	Kind        string  `gorm:"not null;size:20;index"`
	EventID     *uint64 `gorm:"index"`
	GoalCents   *int64
	FundedCents int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	Owner Recipient `gorm:"foreignKey:OwnerID;references:ID"`
}

// TableName specifies the table name for Fundable.
func (Fundable) TableName() string {
	return "fundables"
}
