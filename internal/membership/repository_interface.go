package membership

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*Membership, error)
	GetByUser(ctx context.Context, userID int) (*Membership, error)
	Create(ctx context.Context, userID, membershipTypeID int, start, end time.Time, autoRenewal bool, homeLocationID *int) (*Membership, error)
	Activate(ctx context.Context, id int) error
	SyncStatus(ctx context.Context, id int, from, to Status, clearSuspension bool) error
	ExtendEnd(ctx context.Context, id int, newEnd time.Time, confirmationID string, autoRenewal bool) error
	Suspend(ctx context.Context, id int, s Suspension) error
	CountSuspensionsSince(ctx context.Context, id int, since time.Time) (int, error)
	Reactivate(ctx context.Context, id int, endedAt time.Time) error
	Cancel(ctx context.Context, id int, reason string) error
}
