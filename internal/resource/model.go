package resource

import "time"

type Location struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupClass is one scheduled class instance with a fixed seat count.
type GroupClass struct {
	ID           int       `db:"id" json:"id"`
	LocationID   int       `db:"location_id" json:"location_id"`
	InstructorID int       `db:"instructor_id" json:"instructor_id"`
	ClassType    string    `db:"class_type" json:"class_type"`
	Name         string    `db:"name" json:"name"`
	MaxCapacity  int       `db:"max_capacity" json:"max_capacity"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type GroupClassWithAvailability struct {
	GroupClass
	BookedCount    int `db:"booked_count" json:"booked_count"`
	AvailableSeats int `db:"available_seats" json:"available_seats"`
}

type Instructor struct {
	ID         int       `db:"id" json:"id"`
	LocationID int       `db:"location_id" json:"location_id"`
	Name       string    `db:"name" json:"name"`
	Speciality string    `db:"speciality" json:"speciality"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SpecializedSpace is a bookable space with a per-slot occupant limit.
// SlotCapacity 1 means single occupant.
type SpecializedSpace struct {
	ID           int       `db:"id" json:"id"`
	LocationID   int       `db:"location_id" json:"location_id"`
	Name         string    `db:"name" json:"name"`
	SpaceType    string    `db:"space_type" json:"space_type"`
	SlotCapacity int       `db:"slot_capacity" json:"slot_capacity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Window is a configured bookable time window for an instructor or space.
type Window struct {
	ID        int       `db:"id" json:"id"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

// Interval is a reserved span inside a window, read from active
// reservations.
type Interval struct {
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

type CreateLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type CreateGroupClassRequest struct {
	LocationID   int    `json:"location_id" binding:"required"`
	InstructorID int    `json:"instructor_id" binding:"required"`
	ClassType    string `json:"class_type" binding:"required"`
	Name         string `json:"name" binding:"required"`
	MaxCapacity  int    `json:"max_capacity" binding:"required,min=1"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
}

type CreateInstructorRequest struct {
	LocationID int    `json:"location_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Speciality string `json:"speciality"`
}

type CreateSpaceRequest struct {
	LocationID   int    `json:"location_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	SpaceType    string `json:"space_type" binding:"required"`
	SlotCapacity int    `json:"slot_capacity" binding:"required,min=1"`
}

type CreateWindowRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}
