package reservation

import (
	"context"
	"time"
)

// GroupClassParams reserves one seat of a class instance.
type GroupClassParams struct {
	UserID         int
	IdempotencyKey string
	GroupClassID   int
	LocationID     int
	StartTime      time.Time
	EndTime        time.Time
}

// IntervalParams reserves a time interval against an instructor or a
// specialized space.
type IntervalParams struct {
	UserID         int
	IdempotencyKey string
	ResourceID     int
	LocationID     int
	StartTime      time.Time
	EndTime        time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id int) (*Reservation, error)
	FindByIdempotencyKey(ctx context.Context, userID int, key string) (*Reservation, error)
	ListByUser(ctx context.Context, userID int) ([]Reservation, error)
	ListByGroupClass(ctx context.Context, groupClassID int) ([]Reservation, error)
	ListActiveFutureByUser(ctx context.Context, userID int, from time.Time) ([]Reservation, error)
	CountInPeriod(ctx context.Context, userID int, rtype Type, periodStart time.Time) (int, error)

	ReserveGroupClass(ctx context.Context, p GroupClassParams) (*Reservation, error)
	ReserveInstructor(ctx context.Context, p IntervalParams) (*Reservation, error)
	ReserveSpace(ctx context.Context, p IntervalParams) (*Reservation, error)

	CancelActive(ctx context.Context, id int) error
	MarkCompleted(ctx context.Context, id int) error
	MarkNoShow(ctx context.Context, id int) error
}
