package persistence

import (
	"context"
	"time"
)

// ActivityEntry is a feed entry recorded after a contribution settles.
// Written best-effort outside the settlement transaction.
type ActivityEntry struct {
	RecipientID   uint64
	FundableID    uint64
	ContributorID *uint64
	Kind          string
	Amount        string
	CreatedAt     time.Time
}

// ActivityRepository records activity-feed entries.
type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityEntry) error
}
