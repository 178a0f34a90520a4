package resource

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupResourceMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func TestRepository_CreateLocation(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	rows := sqlmock.NewRows([]string{"id", "name", "address", "created_at"}).
		AddRow(1, "Downtown", "12 Main St", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations (name, address)")).
		WithArgs("Downtown", "12 Main St").
		WillReturnRows(rows)

	loc, err := repo.CreateLocation(context.Background(), "Downtown", "12 Main St")
	require.NoError(t, err)
	require.Equal(t, 1, loc.ID)
	require.Equal(t, "Downtown", loc.Name)
}

func TestRepository_GetLocation_Missing(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "created_at"}))

	_, err := repo.GetLocation(context.Background(), 42)
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestRepository_CreateGroupClass(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(time.Hour)

	rows := sqlmock.NewRows([]string{
		"id", "location_id", "instructor_id", "class_type", "name",
		"max_capacity", "start_time", "end_time", "created_at",
	}).AddRow(7, 1, 3, "yoga", "Morning Flow", 20, start, end, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO group_classes")).
		WithArgs(1, 3, "yoga", "Morning Flow", 20, start, end).
		WillReturnRows(rows)

	created, err := repo.CreateGroupClass(context.Background(), GroupClass{
		LocationID: 1, InstructorID: 3, ClassType: "yoga", Name: "Morning Flow",
		MaxCapacity: 20, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	require.Equal(t, 7, created.ID)
	require.Equal(t, 20, created.MaxCapacity)
}

func TestRepository_ListGroupClassesOn(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	day := time.Date(2026, 3, 16, 10, 30, 0, 0, time.UTC)
	from := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	locationID := 1

	rows := sqlmock.NewRows([]string{
		"id", "location_id", "instructor_id", "class_type", "name",
		"max_capacity", "start_time", "end_time", "created_at",
		"booked_count", "available_seats",
	}).AddRow(7, 1, 3, "yoga", "Morning Flow", 20, from.Add(9*time.Hour), from.Add(10*time.Hour), time.Now(), 18, 2)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN reservations r ON r.group_class_id = gc.id")).
		WithArgs(from, to, &locationID, nil).
		WillReturnRows(rows)

	classes, err := repo.ListGroupClassesOn(context.Background(), day, &locationID, nil)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, 18, classes[0].BookedCount)
	require.Equal(t, 2, classes[0].AvailableSeats)
}

func TestRepository_AddInstructorWindow(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	start := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "start_time", "end_time"}).
		AddRow(5, 3, start, end)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO instructor_windows")).
		WithArgs(3, start, end).
		WillReturnRows(rows)

	w, err := repo.AddInstructorWindow(context.Background(), 3, start, end)
	require.NoError(t, err)
	require.Equal(t, 3, w.OwnerID)
	require.Equal(t, start, w.StartTime)
}

func TestRepository_InstructorReservedOn_ScopesToDay(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	day := time.Date(2026, 3, 16, 15, 0, 0, 0, time.UTC)
	from := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows := sqlmock.NewRows([]string{"start_time", "end_time"}).
		AddRow(from.Add(10*time.Hour), from.Add(11*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE instructor_id = $1 AND status = 'active'")).
		WithArgs(3, from, to).
		WillReturnRows(rows)

	intervals, err := repo.InstructorReservedOn(context.Background(), 3, day)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	require.Equal(t, from.Add(10*time.Hour), intervals[0].StartTime)
}

func TestRepository_GetSpace_Missing(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM specialized_spaces")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetSpace(context.Background(), 9)
	require.ErrorIs(t, err, ErrSpaceNotFound)
}

func TestRepository_CreateSpace(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	rows := sqlmock.NewRows([]string{"id", "location_id", "name", "space_type", "slot_capacity", "created_at"}).
		AddRow(9, 1, "Sauna A", "sauna", 4, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO specialized_spaces")).
		WithArgs(1, "Sauna A", "sauna", 4).
		WillReturnRows(rows)

	sp, err := repo.CreateSpace(context.Background(), 1, "Sauna A", "sauna", 4)
	require.NoError(t, err)
	require.Equal(t, 4, sp.SlotCapacity)
}

func TestRepository_ListSpaces_NilLocation(t *testing.T) {
	repo, mock, close := setupResourceMock(t)
	defer close()

	rows := sqlmock.NewRows([]string{"id", "location_id", "name", "space_type", "slot_capacity", "created_at"}).
		AddRow(9, 1, "Sauna A", "sauna", 4, time.Now()).
		AddRow(10, 2, "Pool", "pool", 12, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM specialized_spaces")).
		WithArgs(nil).
		WillReturnRows(rows)

	spaces, err := repo.ListSpaces(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, spaces, 2)
}
