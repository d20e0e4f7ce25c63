package model

import (
	"time"
)

// Recipient is the database model for recipients. Balance fields live on the
// recipient row; ReceivedCents is the withdrawable balance in cents.
type Recipient struct {
	ID                         uint64    `gorm:"primaryKey"`
	ReceivedCents              int64     `gorm:"not null;default:0"`
	ContributionsReceivedCount uint64    `gorm:"not null;default:0"`
	BankAccountID              string    `gorm:"size:255"`
	BankOnboarded              bool      `gorm:"not null;default:false"`
	VenmoHandle                string    `gorm:"size:255"`
	PayPalEmail                string    `gorm:"size:255"`
	CreatedAt                  time.Time `gorm:"not null"`
	UpdatedAt                  time.Time `gorm:"not null"`
}

// TableName specifies the table name for Recipient.
func (Recipient) TableName() string {
	return "recipients"
}
