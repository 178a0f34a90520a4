package membership

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupMembershipMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func membershipRows(id, userID int, status Status, end time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "membership_type_id", "status", "start_date", "end_date",
		"suspensions_used", "auto_renewal", "home_location_id",
		"suspension_reason", "suspension_start", "suspension_end",
		"created_at", "updated_at",
	}).AddRow(id, userID, 2, status, end.AddDate(0, 0, -30), end, 0, false, nil, nil, nil, nil, now, now)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, close := setupMembershipMock(t)
	defer close()

	end := time.Now().AddDate(0, 0, 20)
	mock.ExpectQuery(regexp.QuoteMeta("FROM memberships WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(membershipRows(1, 10, StatusActive, end))

	m, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, m.ID)
	require.Equal(t, StatusActive, m.Status)
}

func TestRepository_GetByUser_SkipsCancelled(t *testing.T) {
	repo, mock, close := setupMembershipMock(t)
	defer close()

	end := time.Now().AddDate(0, 0, 20)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND status != 'cancelled'")).
		WithArgs(10).
		WillReturnRows(membershipRows(3, 10, StatusActive, end))

	m, err := repo.GetByUser(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 3, m.ID)
}

func TestRepository_Activate_GuardsOnPending(t *testing.T) {
	repo, mock, close := setupMembershipMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'active', updated_at = NOW()")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Activate(context.Background(), 1)
	require.ErrorIs(t, err, ErrTransitionConflict)
}

func TestRepository_ExtendEnd(t *testing.T) {
	newEnd := time.Now().AddDate(0, 0, 50)

	t.Run("records the renewal and moves the end date atomically", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO membership_renewals (membership_id, confirmation_id, new_end_date)")).
			WithArgs(1, "conf-1", newEnd).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta("SET end_date = $1, status = 'active', auto_renewal = $2, updated_at = NOW()")).
			WithArgs(newEnd, true, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ExtendEnd(context.Background(), 1, newEnd, "conf-1", true)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replayed confirmation id maps to the duplicate sentinel", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO membership_renewals")).
			WithArgs(1, "conf-1", newEnd).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.ExtendEnd(context.Background(), 1, newEnd, "conf-1", true)
		require.ErrorIs(t, err, ErrDuplicateConfirmation)
	})

	t.Run("wrong status rolls the renewal record back too", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO membership_renewals")).
			WithArgs(1, "conf-1", newEnd).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta("SET end_date = $1")).
			WithArgs(newEnd, true, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ExtendEnd(context.Background(), 1, newEnd, "conf-1", true)
		require.ErrorIs(t, err, ErrTransitionConflict)
	})
}

func TestRepository_Suspend(t *testing.T) {
	susp := Suspension{
		Reason:    "travel",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 0, 30),
	}

	t.Run("flips status and appends to history in one transaction", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET status = 'suspended', suspensions_used = suspensions_used + 1")).
			WithArgs(susp.Reason, susp.StartDate, susp.EndDate, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO membership_suspensions (membership_id, reason, start_date, end_date)")).
			WithArgs(1, susp.Reason, susp.StartDate, susp.EndDate).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.Suspend(context.Background(), 1, susp)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-active membership conflicts", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET status = 'suspended'")).
			WithArgs(susp.Reason, susp.StartDate, susp.EndDate, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Suspend(context.Background(), 1, susp)
		require.ErrorIs(t, err, ErrTransitionConflict)
	})
}

func TestRepository_Reactivate_ClosesHistoryRow(t *testing.T) {
	repo, mock, close := setupMembershipMock(t)
	defer close()

	endedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'suspended'")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE membership_suspensions")).
		WithArgs(endedAt, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Reactivate(context.Background(), 1, endedAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountSuspensionsSince(t *testing.T) {
	repo, mock, close := setupMembershipMock(t)
	defer close()

	since := time.Now().AddDate(-1, 0, 0)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE membership_id = $1 AND start_date > $2")).
		WithArgs(1, since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountSuspensionsSince(context.Background(), 1, since)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestRepository_Cancel(t *testing.T) {
	t.Run("cancels an active or suspended membership", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled', cancellation_reason = $1")).
			WithArgs("moving away", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Cancel(context.Background(), 1, "moving away")
		require.NoError(t, err)
	})

	t.Run("terminal states conflict", func(t *testing.T) {
		repo, mock, close := setupMembershipMock(t)
		defer close()

		mock.ExpectExec(regexp.QuoteMeta("SET status = 'cancelled'")).
			WithArgs("too late", 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Cancel(context.Background(), 1, "too late")
		require.ErrorIs(t, err, ErrTransitionConflict)
	})
}
