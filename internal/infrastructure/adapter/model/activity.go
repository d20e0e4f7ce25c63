package model

import (
	"time"
)

// Activity is the database model for feed entries recorded after settlement.
type Activity struct {
	ID            uint64  `gorm:"primaryKey;autoIncrement"`
	RecipientID   uint64  `gorm:"not null;index"`
	FundableID    uint64  `gorm:"not null;index"`
	ContributorID *uint64 `gorm:"index"`
	Kind          string  `gorm:"not null;size:50"`
	Amount        string  `gorm:"size:50"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Activity.
func (Activity) TableName() string {
	return "activities"
}
