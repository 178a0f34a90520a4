package membership

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrDuplicateConfirmation = errors.New("payment confirmation already applied")
	ErrTransitionConflict    = errors.New("membership not in a state allowing this transition")
)

const membershipColumns = `
	id, user_id, membership_type_id, status, start_date, end_date,
	suspensions_used, auto_renewal, home_location_id,
	suspension_reason, suspension_start, suspension_end,
	created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		return nil, ErrMembershipNotFound
	}

	return &m, nil
}

func (r *repository) GetByUser(ctx context.Context, userID int) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1 AND status != 'cancelled'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, userID)
	if err != nil {
		return nil, ErrMembershipNotFound
	}

	return &m, nil
}

func (r *repository) Create(ctx context.Context, userID, membershipTypeID int, start, end time.Time, autoRenewal bool, homeLocationID *int) (*Membership, error) {
	query := `
		INSERT INTO memberships (user_id, membership_type_id, status, start_date, end_date, auto_renewal, home_location_id)
		VALUES ($1, $2, 'pending', $3, $4, $5, $6)
		RETURNING ` + membershipColumns

	var m Membership
	err := r.db.GetContext(ctx, &m, query, userID, membershipTypeID, start, end, autoRenewal, homeLocationID)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) Activate(ctx context.Context, id int) error {
	query := `
		UPDATE memberships
		SET status = 'active', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
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
		return ErrTransitionConflict
	}

	return nil
}

// SyncStatus persists a lazily derived status correction. Guarded on the
// previously read status so a concurrent writer cannot be overwritten.
func (r *repository) SyncStatus(ctx context.Context, id int, from, to Status, clearSuspension bool) error {
	var query string
	if clearSuspension {
		query = `
			UPDATE memberships
			SET status = $1, suspension_reason = NULL, suspension_start = NULL,
			    suspension_end = NULL, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`
	} else {
		query = `
			UPDATE memberships
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`
	}

	_, err := r.db.ExecContext(ctx, query, to, id, from)
	return err
}

func (r *repository) ExtendEnd(ctx context.Context, id int, newEnd time.Time, confirmationID string, autoRenewal bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The unique index on (membership_id, confirmation_id) makes the
	// extension at-most-once per payment confirmation.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO membership_renewals (membership_id, confirmation_id, new_end_date)
		VALUES ($1, $2, $3)
	`, id, confirmationID, newEnd)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateConfirmation
		}
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE memberships
		SET end_date = $1, status = 'active', auto_renewal = $2, updated_at = NOW()
		WHERE id = $3 AND status IN ('active', 'expired')
	`, newEnd, autoRenewal, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTransitionConflict
	}

	return tx.Commit()
}

func (r *repository) Suspend(ctx context.Context, id int, s Suspension) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'suspended', suspensions_used = suspensions_used + 1,
		    suspension_reason = $1, suspension_start = $2, suspension_end = $3,
		    updated_at = NOW()
		WHERE id = $4 AND status = 'active'
	`, s.Reason, s.StartDate, s.EndDate, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTransitionConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO membership_suspensions (membership_id, reason, start_date, end_date)
		VALUES ($1, $2, $3, $4)
	`, id, s.Reason, s.StartDate, s.EndDate)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) CountSuspensionsSince(ctx context.Context, id int, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM membership_suspensions
		WHERE membership_id = $1 AND start_date > $2
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, id, since)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) Reactivate(ctx context.Context, id int, endedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'active', suspension_reason = NULL, suspension_start = NULL,
		    suspension_end = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'suspended'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTransitionConflict
	}

	// Close the open history row so the rolling-window count keeps the
	// actual suspension span.
	_, err = tx.ExecContext(ctx, `
		UPDATE membership_suspensions
		SET end_date = $1
		WHERE membership_id = $2 AND end_date > $1
	`, endedAt, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) Cancel(ctx context.Context, id int, reason string) error {
	query := `
		UPDATE memberships
		SET status = 'cancelled', cancellation_reason = $1,
		    suspension_reason = NULL, suspension_start = NULL, suspension_end = NULL,
		    updated_at = NOW()
		WHERE id = $2 AND status IN ('active', 'suspended')
	`

	result, err := r.db.ExecContext(ctx, query, reason, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTransitionConflict
	}

	return nil
}
