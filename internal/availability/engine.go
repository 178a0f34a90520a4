package availability

import (
	"context"
	"errors"
	"iter"
	"time"

	"gymcore/internal/resource"
)

type ResourceType string

const (
	TypeGroupClass       ResourceType = "group_class"
	TypePersonalTraining ResourceType = "personal_training"
	TypeSpecializedSpace ResourceType = "specialized_space"
)

var ErrUnknownResourceType = errors.New("unknown resource type")

// Slot is a discrete bookable window with its open capacity.
type Slot struct {
	Type           ResourceType `json:"type"`
	ResourceID     int          `json:"resource_id"`
	ResourceName   string       `json:"resource_name"`
	LocationID     int          `json:"location_id"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	AvailableUnits int          `json:"available_units"`
}

type Query struct {
	Type         ResourceType
	Date         time.Time
	LocationID   *int
	ClassType    *string
	InstructorID *int
	SpaceID      *int
}

// Engine computes free slots from resource schedules and existing
// reservations. Strictly read-only.
type Engine struct {
	resources resource.Repository
}

func NewEngine(resources resource.Repository) *Engine {
	return &Engine{resources: resources}
}

// Slots snapshots the schedule and reservations for the queried day and
// returns a lazy, finite, restartable sequence over the snapshot. The
// result is advisory: the authoritative capacity check happens inside the
// reservation manager's atomic reserve.
func (e *Engine) Slots(ctx context.Context, q Query) (iter.Seq[Slot], error) {
	switch q.Type {
	case TypeGroupClass:
		return e.groupClassSlots(ctx, q)
	case TypePersonalTraining:
		return e.instructorSlots(ctx, q)
	case TypeSpecializedSpace:
		return e.spaceSlots(ctx, q)
	default:
		return nil, ErrUnknownResourceType
	}
}

func (e *Engine) groupClassSlots(ctx context.Context, q Query) (iter.Seq[Slot], error) {
	classes, err := e.resources.ListGroupClassesOn(ctx, q.Date, q.LocationID, q.ClassType)
	if err != nil {
		return nil, err
	}

	return func(yield func(Slot) bool) {
		for _, gc := range classes {
			if gc.AvailableSeats <= 0 {
				continue
			}
			slot := Slot{
				Type:           TypeGroupClass,
				ResourceID:     gc.ID,
				ResourceName:   gc.Name,
				LocationID:     gc.LocationID,
				StartTime:      gc.StartTime,
				EndTime:        gc.EndTime,
				AvailableUnits: gc.AvailableSeats,
			}
			if !yield(slot) {
				return
			}
		}
	}, nil
}

func (e *Engine) instructorSlots(ctx context.Context, q Query) (iter.Seq[Slot], error) {
	var instructors []resource.Instructor
	if q.InstructorID != nil {
		ins, err := e.resources.GetInstructor(ctx, *q.InstructorID)
		if err != nil {
			return nil, err
		}
		instructors = []resource.Instructor{*ins}
	} else {
		var err error
		instructors, err = e.resources.ListInstructors(ctx, q.LocationID)
		if err != nil {
			return nil, err
		}
	}

	type snapshot struct {
		instructor resource.Instructor
		windows    []resource.Window
		reserved   []Interval
	}

	snapshots := make([]snapshot, 0, len(instructors))
	for _, ins := range instructors {
		windows, err := e.resources.InstructorWindowsOn(ctx, ins.ID, q.Date)
		if err != nil {
			return nil, err
		}
		reserved, err := e.resources.InstructorReservedOn(ctx, ins.ID, q.Date)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot{
			instructor: ins,
			windows:    windows,
			reserved:   toIntervals(reserved),
		})
	}

	return func(yield func(Slot) bool) {
		for _, snap := range snapshots {
			for _, w := range snap.windows {
				window := Interval{Start: w.StartTime, End: w.EndTime}
				for _, free := range Subtract(window, snap.reserved) {
					slot := Slot{
						Type:           TypePersonalTraining,
						ResourceID:     snap.instructor.ID,
						ResourceName:   snap.instructor.Name,
						LocationID:     snap.instructor.LocationID,
						StartTime:      free.Start,
						EndTime:        free.End,
						AvailableUnits: 1,
					}
					if !yield(slot) {
						return
					}
				}
			}
		}
	}, nil
}

func (e *Engine) spaceSlots(ctx context.Context, q Query) (iter.Seq[Slot], error) {
	var spaces []resource.SpecializedSpace
	if q.SpaceID != nil {
		sp, err := e.resources.GetSpace(ctx, *q.SpaceID)
		if err != nil {
			return nil, err
		}
		spaces = []resource.SpecializedSpace{*sp}
	} else {
		var err error
		spaces, err = e.resources.ListSpaces(ctx, q.LocationID)
		if err != nil {
			return nil, err
		}
	}

	type snapshot struct {
		space    resource.SpecializedSpace
		windows  []resource.Window
		reserved []Interval
	}

	snapshots := make([]snapshot, 0, len(spaces))
	for _, sp := range spaces {
		windows, err := e.resources.SpaceWindowsOn(ctx, sp.ID, q.Date)
		if err != nil {
			return nil, err
		}
		reserved, err := e.resources.SpaceReservedOn(ctx, sp.ID, q.Date)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot{
			space:    sp,
			windows:  windows,
			reserved: toIntervals(reserved),
		})
	}

	return func(yield func(Slot) bool) {
		for _, snap := range snapshots {
			for _, w := range snap.windows {
				window := Interval{Start: w.StartTime, End: w.EndTime}
				for _, free := range FreeCapacity(window, snap.reserved, snap.space.SlotCapacity) {
					slot := Slot{
						Type:           TypeSpecializedSpace,
						ResourceID:     snap.space.ID,
						ResourceName:   snap.space.Name,
						LocationID:     snap.space.LocationID,
						StartTime:      free.Start,
						EndTime:        free.End,
						AvailableUnits: free.Remaining,
					}
					if !yield(slot) {
						return
					}
				}
			}
		}
	}, nil
}

func toIntervals(in []resource.Interval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		out = append(out, Interval{Start: iv.StartTime, End: iv.EndTime})
	}
	return out
}
