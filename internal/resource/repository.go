package resource

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrClassNotFound      = errors.New("group class not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrSpaceNotFound      = errors.New("specialized space not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *repository) CreateLocation(ctx context.Context, name, address string) (*Location, error) {
	query := `
		INSERT INTO locations (name, address)
		VALUES ($1, $2)
		RETURNING id, name, address, created_at
	`

	var loc Location
	err := r.db.GetContext(ctx, &loc, query, name, address)
	if err != nil {
		return nil, err
	}

	return &loc, nil
}

func (r *repository) ListLocations(ctx context.Context) ([]Location, error) {
	query := `
		SELECT id, name, address, created_at
		FROM locations
		ORDER BY name ASC
	`

	var locs []Location
	err := r.db.SelectContext(ctx, &locs, query)
	if err != nil {
		return nil, err
	}

	return locs, nil
}

func (r *repository) GetLocation(ctx context.Context, id int) (*Location, error) {
	query := `
		SELECT id, name, address, created_at
		FROM locations
		WHERE id = $1
	`

	var loc Location
	err := r.db.GetContext(ctx, &loc, query, id)
	if err != nil {
		return nil, ErrLocationNotFound
	}

	return &loc, nil
}

func (r *repository) CreateGroupClass(ctx context.Context, gc GroupClass) (*GroupClass, error) {
	query := `
		INSERT INTO group_classes (location_id, instructor_id, class_type, name, max_capacity, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, location_id, instructor_id, class_type, name, max_capacity, start_time, end_time, created_at
	`

	var created GroupClass
	err := r.db.GetContext(ctx, &created, query,
		gc.LocationID, gc.InstructorID, gc.ClassType, gc.Name, gc.MaxCapacity, gc.StartTime, gc.EndTime)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetGroupClass(ctx context.Context, id int) (*GroupClass, error) {
	query := `
		SELECT id, location_id, instructor_id, class_type, name, max_capacity, start_time, end_time, created_at
		FROM group_classes
		WHERE id = $1
	`

	var gc GroupClass
	err := r.db.GetContext(ctx, &gc, query, id)
	if err != nil {
		return nil, ErrClassNotFound
	}

	return &gc, nil
}

func (r *repository) ListGroupClassesOn(ctx context.Context, day time.Time, locationID *int, classType *string) ([]GroupClassWithAvailability, error) {
	from, to := dayBounds(day)

	query := `
		SELECT
			gc.id, gc.location_id, gc.instructor_id, gc.class_type, gc.name,
			gc.max_capacity, gc.start_time, gc.end_time, gc.created_at,
			COUNT(r.id) FILTER (WHERE r.status = 'active') AS booked_count,
			gc.max_capacity - COUNT(r.id) FILTER (WHERE r.status = 'active') AS available_seats
		FROM group_classes gc
		LEFT JOIN reservations r ON r.group_class_id = gc.id
		WHERE gc.start_time >= $1 AND gc.start_time < $2
		  AND ($3::int IS NULL OR gc.location_id = $3)
		  AND ($4::text IS NULL OR gc.class_type = $4)
		GROUP BY gc.id
		ORDER BY gc.start_time ASC
	`

	var classes []GroupClassWithAvailability
	err := r.db.SelectContext(ctx, &classes, query, from, to, locationID, classType)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *repository) CreateInstructor(ctx context.Context, locationID int, name, speciality string) (*Instructor, error) {
	query := `
		INSERT INTO instructors (location_id, name, speciality)
		VALUES ($1, $2, $3)
		RETURNING id, location_id, name, speciality, created_at
	`

	var ins Instructor
	err := r.db.GetContext(ctx, &ins, query, locationID, name, speciality)
	if err != nil {
		return nil, err
	}

	return &ins, nil
}

func (r *repository) GetInstructor(ctx context.Context, id int) (*Instructor, error) {
	query := `
		SELECT id, location_id, name, speciality, created_at
		FROM instructors
		WHERE id = $1
	`

	var ins Instructor
	err := r.db.GetContext(ctx, &ins, query, id)
	if err != nil {
		return nil, ErrInstructorNotFound
	}

	return &ins, nil
}

func (r *repository) ListInstructors(ctx context.Context, locationID *int) ([]Instructor, error) {
	query := `
		SELECT id, location_id, name, speciality, created_at
		FROM instructors
		WHERE $1::int IS NULL OR location_id = $1
		ORDER BY name ASC
	`

	var instructors []Instructor
	err := r.db.SelectContext(ctx, &instructors, query, locationID)
	if err != nil {
		return nil, err
	}

	return instructors, nil
}

func (r *repository) AddInstructorWindow(ctx context.Context, instructorID int, start, end time.Time) (*Window, error) {
	query := `
		INSERT INTO instructor_windows (instructor_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, instructor_id AS owner_id, start_time, end_time
	`

	var w Window
	err := r.db.GetContext(ctx, &w, query, instructorID, start, end)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *repository) InstructorWindowsOn(ctx context.Context, instructorID int, day time.Time) ([]Window, error) {
	from, to := dayBounds(day)

	query := `
		SELECT id, instructor_id AS owner_id, start_time, end_time
		FROM instructor_windows
		WHERE instructor_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`

	var windows []Window
	err := r.db.SelectContext(ctx, &windows, query, instructorID, from, to)
	if err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *repository) InstructorReservedOn(ctx context.Context, instructorID int, day time.Time) ([]Interval, error) {
	from, to := dayBounds(day)

	query := `
		SELECT start_time, end_time
		FROM reservations
		WHERE instructor_id = $1 AND status = 'active'
		  AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`

	var intervals []Interval
	err := r.db.SelectContext(ctx, &intervals, query, instructorID, from, to)
	if err != nil {
		return nil, err
	}

	return intervals, nil
}

func (r *repository) CreateSpace(ctx context.Context, locationID int, name, spaceType string, slotCapacity int) (*SpecializedSpace, error) {
	query := `
		INSERT INTO specialized_spaces (location_id, name, space_type, slot_capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, location_id, name, space_type, slot_capacity, created_at
	`

	var sp SpecializedSpace
	err := r.db.GetContext(ctx, &sp, query, locationID, name, spaceType, slotCapacity)
	if err != nil {
		return nil, err
	}

	return &sp, nil
}

func (r *repository) GetSpace(ctx context.Context, id int) (*SpecializedSpace, error) {
	query := `
		SELECT id, location_id, name, space_type, slot_capacity, created_at
		FROM specialized_spaces
		WHERE id = $1
	`

	var sp SpecializedSpace
	err := r.db.GetContext(ctx, &sp, query, id)
	if err != nil {
		return nil, ErrSpaceNotFound
	}

	return &sp, nil
}

func (r *repository) ListSpaces(ctx context.Context, locationID *int) ([]SpecializedSpace, error) {
	query := `
		SELECT id, location_id, name, space_type, slot_capacity, created_at
		FROM specialized_spaces
		WHERE $1::int IS NULL OR location_id = $1
		ORDER BY name ASC
	`

	var spaces []SpecializedSpace
	err := r.db.SelectContext(ctx, &spaces, query, locationID)
	if err != nil {
		return nil, err
	}

	return spaces, nil
}

func (r *repository) AddSpaceWindow(ctx context.Context, spaceID int, start, end time.Time) (*Window, error) {
	query := `
		INSERT INTO space_windows (space_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, space_id AS owner_id, start_time, end_time
	`

	var w Window
	err := r.db.GetContext(ctx, &w, query, spaceID, start, end)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *repository) SpaceWindowsOn(ctx context.Context, spaceID int, day time.Time) ([]Window, error) {
	from, to := dayBounds(day)

	query := `
		SELECT id, space_id AS owner_id, start_time, end_time
		FROM space_windows
		WHERE space_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`

	var windows []Window
	err := r.db.SelectContext(ctx, &windows, query, spaceID, from, to)
	if err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *repository) SpaceReservedOn(ctx context.Context, spaceID int, day time.Time) ([]Interval, error) {
	from, to := dayBounds(day)

	query := `
		SELECT start_time, end_time
		FROM reservations
		WHERE space_id = $1 AND status = 'active'
		  AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`

	var intervals []Interval
	err := r.db.SelectContext(ctx, &intervals, query, spaceID, from, to)
	if err != nil {
		return nil, err
	}

	return intervals, nil
}
