package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFoundOrNotActive = errors.New("reservation not found or not active")
	ErrDuplicateKey        = errors.New("idempotency key already used")
	ErrCapacityExhausted   = errors.New("no capacity left for this slot")
	ErrResourceMissing     = errors.New("resource row not found")
)

const reservationColumns = `
	id, user_id, idempotency_key, type, group_class_id, instructor_id, space_id,
	location_id, start_time, end_time, status, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, userID int, key string) (*Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1 AND idempotency_key = $2
	`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, userID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY start_time DESC
	`

	var out []Reservation
	err := r.db.SelectContext(ctx, &out, query, userID)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *repository) ListByGroupClass(ctx context.Context, groupClassID int) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE group_class_id = $1
		ORDER BY created_at DESC
	`

	var out []Reservation
	err := r.db.SelectContext(ctx, &out, query, groupClassID)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *repository) ListActiveFutureByUser(ctx context.Context, userID int, from time.Time) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1 AND status = 'active' AND start_time > $2
		ORDER BY start_time ASC
	`

	var out []Reservation
	err := r.db.SelectContext(ctx, &out, query, userID, from)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// CountInPeriod counts reservations consuming quota in the running billing
// period. Cancelled ones gave their unit back and do not count.
func (r *repository) CountInPeriod(ctx context.Context, userID int, rtype Type, periodStart time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE user_id = $1 AND type = $2 AND status != 'cancelled'
		  AND start_time >= $3
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, rtype, periodStart)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ReserveGroupClass re-checks occupancy and inserts the reservation inside
// one transaction, with a row lock on the class instance. Losing the race
// for the last seat surfaces as ErrCapacityExhausted, with nothing written.
func (r *repository) ReserveGroupClass(ctx context.Context, p GroupClassParams) (*Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var maxCapacity int
	err = tx.GetContext(ctx, &maxCapacity,
		`SELECT max_capacity FROM group_classes WHERE id = $1 FOR UPDATE`, p.GroupClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceMissing
		}
		return nil, err
	}

	var booked int
	err = tx.GetContext(ctx, &booked,
		`SELECT COUNT(*) FROM reservations WHERE group_class_id = $1 AND status = 'active'`,
		p.GroupClassID)
	if err != nil {
		return nil, err
	}

	if booked >= maxCapacity {
		return nil, ErrCapacityExhausted
	}

	var res Reservation
	err = tx.GetContext(ctx, &res, `
		INSERT INTO reservations (user_id, idempotency_key, type, group_class_id, location_id, start_time, end_time, status)
		VALUES ($1, $2, 'group_class', $3, $4, $5, $6, 'active')
		RETURNING `+reservationColumns,
		p.UserID, p.IdempotencyKey, p.GroupClassID, p.LocationID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &res, nil
}

// ReserveInstructor locks the instructor row, then verifies the interval
// sits inside a working window and overlaps no active reservation before
// inserting. One concurrent booking per instructor interval.
func (r *repository) ReserveInstructor(ctx context.Context, p IntervalParams) (*Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var instructorID int
	err = tx.GetContext(ctx, &instructorID,
		`SELECT id FROM instructors WHERE id = $1 FOR UPDATE`, p.ResourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceMissing
		}
		return nil, err
	}

	var inWindow bool
	err = tx.GetContext(ctx, &inWindow, `
		SELECT EXISTS(
			SELECT 1 FROM instructor_windows
			WHERE instructor_id = $1 AND start_time <= $2 AND end_time >= $3
		)`, p.ResourceID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}
	if !inWindow {
		return nil, ErrCapacityExhausted
	}

	var conflict bool
	err = tx.GetContext(ctx, &conflict, `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE instructor_id = $1 AND status = 'active'
			  AND start_time < $3 AND end_time > $2
		)`, p.ResourceID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrCapacityExhausted
	}

	var res Reservation
	err = tx.GetContext(ctx, &res, `
		INSERT INTO reservations (user_id, idempotency_key, type, instructor_id, location_id, start_time, end_time, status)
		VALUES ($1, $2, 'personal_training', $3, $4, $5, $6, 'active')
		RETURNING `+reservationColumns,
		p.UserID, p.IdempotencyKey, p.ResourceID, p.LocationID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &res, nil
}

// ReserveSpace is the multi-occupant variant: the interval is free while
// fewer than slot_capacity active reservations overlap it.
func (r *repository) ReserveSpace(ctx context.Context, p IntervalParams) (*Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var slotCapacity int
	err = tx.GetContext(ctx, &slotCapacity,
		`SELECT slot_capacity FROM specialized_spaces WHERE id = $1 FOR UPDATE`, p.ResourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceMissing
		}
		return nil, err
	}

	var inWindow bool
	err = tx.GetContext(ctx, &inWindow, `
		SELECT EXISTS(
			SELECT 1 FROM space_windows
			WHERE space_id = $1 AND start_time <= $2 AND end_time >= $3
		)`, p.ResourceID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}
	if !inWindow {
		return nil, ErrCapacityExhausted
	}

	var overlapping int
	err = tx.GetContext(ctx, &overlapping, `
		SELECT COUNT(*)
		FROM reservations
		WHERE space_id = $1 AND status = 'active'
		  AND start_time < $3 AND end_time > $2
	`, p.ResourceID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}
	if overlapping >= slotCapacity {
		return nil, ErrCapacityExhausted
	}

	var res Reservation
	err = tx.GetContext(ctx, &res, `
		INSERT INTO reservations (user_id, idempotency_key, type, space_id, location_id, start_time, end_time, status)
		VALUES ($1, $2, 'specialized_space', $3, $4, $5, $6, 'active')
		RETURNING `+reservationColumns,
		p.UserID, p.IdempotencyKey, p.ResourceID, p.LocationID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &res, nil
}

// CancelActive flips an active reservation to cancelled. Occupancy is
// derived from active rows, so the flip is also the capacity release.
func (r *repository) CancelActive(ctx context.Context, id int) error {
	query := `
		UPDATE reservations
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFoundOrNotActive
	}

	return nil
}

func (r *repository) MarkCompleted(ctx context.Context, id int) error {
	return r.markElapsed(ctx, id, StatusCompleted)
}

func (r *repository) MarkNoShow(ctx context.Context, id int) error {
	return r.markElapsed(ctx, id, StatusNoShow)
}

func (r *repository) markElapsed(ctx context.Context, id int, to Status) error {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, to, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFoundOrNotActive
	}

	return nil
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateKey
	}
	return err
}
