package resource

import (
	"context"
	"time"
)

type Repository interface {
	CreateLocation(ctx context.Context, name, address string) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id int) (*Location, error)

	CreateGroupClass(ctx context.Context, gc GroupClass) (*GroupClass, error)
	GetGroupClass(ctx context.Context, id int) (*GroupClass, error)
	ListGroupClassesOn(ctx context.Context, day time.Time, locationID *int, classType *string) ([]GroupClassWithAvailability, error)

	CreateInstructor(ctx context.Context, locationID int, name, speciality string) (*Instructor, error)
	GetInstructor(ctx context.Context, id int) (*Instructor, error)
	ListInstructors(ctx context.Context, locationID *int) ([]Instructor, error)
	AddInstructorWindow(ctx context.Context, instructorID int, start, end time.Time) (*Window, error)
	InstructorWindowsOn(ctx context.Context, instructorID int, day time.Time) ([]Window, error)
	InstructorReservedOn(ctx context.Context, instructorID int, day time.Time) ([]Interval, error)

	CreateSpace(ctx context.Context, locationID int, name, spaceType string, slotCapacity int) (*SpecializedSpace, error)
	GetSpace(ctx context.Context, id int) (*SpecializedSpace, error)
	ListSpaces(ctx context.Context, locationID *int) ([]SpecializedSpace, error)
	AddSpaceWindow(ctx context.Context, spaceID int, start, end time.Time) (*Window, error)
	SpaceWindowsOn(ctx context.Context, spaceID int, day time.Time) ([]Window, error)
	SpaceReservedOn(ctx context.Context, spaceID int, day time.Time) ([]Interval, error)
}
