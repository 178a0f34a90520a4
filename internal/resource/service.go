package resource

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidWindow = errors.New("invalid time window")

type Service interface {
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	CreateGroupClass(ctx context.Context, req CreateGroupClassRequest) (*GroupClass, error)
	CreateInstructor(ctx context.Context, req CreateInstructorRequest) (*Instructor, error)
	AddInstructorWindow(ctx context.Context, instructorID int, req CreateWindowRequest) (*Window, error)
	CreateSpace(ctx context.Context, req CreateSpaceRequest) (*SpecializedSpace, error)
	AddSpaceWindow(ctx context.Context, spaceID int, req CreateWindowRequest) (*Window, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}

	return start, end, nil
}

func (s *service) CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	return s.repo.CreateLocation(ctx, req.Name, req.Address)
}

func (s *service) ListLocations(ctx context.Context) ([]Location, error) {
	return s.repo.ListLocations(ctx)
}

func (s *service) CreateGroupClass(ctx context.Context, req CreateGroupClassRequest) (*GroupClass, error) {
	if _, err := s.repo.GetLocation(ctx, req.LocationID); err != nil {
		return nil, ErrLocationNotFound
	}

	if _, err := s.repo.GetInstructor(ctx, req.InstructorID); err != nil {
		return nil, ErrInstructorNotFound
	}

	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateGroupClass(ctx, GroupClass{
		LocationID:   req.LocationID,
		InstructorID: req.InstructorID,
		ClassType:    req.ClassType,
		Name:         req.Name,
		MaxCapacity:  req.MaxCapacity,
		StartTime:    start,
		EndTime:      end,
	})
}

func (s *service) CreateInstructor(ctx context.Context, req CreateInstructorRequest) (*Instructor, error) {
	if _, err := s.repo.GetLocation(ctx, req.LocationID); err != nil {
		return nil, ErrLocationNotFound
	}

	return s.repo.CreateInstructor(ctx, req.LocationID, req.Name, req.Speciality)
}

func (s *service) AddInstructorWindow(ctx context.Context, instructorID int, req CreateWindowRequest) (*Window, error) {
	if _, err := s.repo.GetInstructor(ctx, instructorID); err != nil {
		return nil, ErrInstructorNotFound
	}

	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	return s.repo.AddInstructorWindow(ctx, instructorID, start, end)
}

func (s *service) CreateSpace(ctx context.Context, req CreateSpaceRequest) (*SpecializedSpace, error) {
	if _, err := s.repo.GetLocation(ctx, req.LocationID); err != nil {
		return nil, ErrLocationNotFound
	}

	return s.repo.CreateSpace(ctx, req.LocationID, req.Name, req.SpaceType, req.SlotCapacity)
}

func (s *service) AddSpaceWindow(ctx context.Context, spaceID int, req CreateWindowRequest) (*Window, error) {
	if _, err := s.repo.GetSpace(ctx, spaceID); err != nil {
		return nil, ErrSpaceNotFound
	}

	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	return s.repo.AddSpaceWindow(ctx, spaceID, start, end)
}
