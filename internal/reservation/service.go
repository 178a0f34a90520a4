package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gymcore/internal/catalog"
	"gymcore/internal/entitlement"
	"gymcore/internal/logger"
	"gymcore/internal/loyalty"
	"gymcore/internal/membership"
	"gymcore/internal/metrics"
	"gymcore/internal/resource"
)

var (
	ErrEntitlementExceeded      = errors.New("entitlement exceeded for this reservation type")
	ErrSlotNoLongerAvailable    = errors.New("slot is no longer available")
	ErrCancellationWindowClosed = errors.New("cancellation window is closed")
	ErrResourceNotFound         = errors.New("resource not found")
	ErrInvalidTimeRange         = errors.New("invalid time range")
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrNotOwner                 = errors.New("reservation does not belong to this user")
	ErrSlotNotElapsed           = errors.New("slot has not elapsed yet")
)

// DefaultCancellationWindow is the minimum lead time for member-initiated
// cancellations. Operator cancellations bypass it.
const DefaultCancellationWindow = 2 * time.Hour

type Service interface {
	Create(ctx context.Context, userID int, req CreateRequest) (*Reservation, error)
	Cancel(ctx context.Context, id int, actor Actor) error
	CancelFutureForUser(ctx context.Context, userID int, from time.Time) (int, []membership.CascadeFailure, error)
	ListForUser(ctx context.Context, userID int) ([]Reservation, error)
	ListForGroupClass(ctx context.Context, groupClassID int) ([]Reservation, error)
	MarkCompleted(ctx context.Context, id int) error
	MarkNoShow(ctx context.Context, id int) error
}

// Notifier queues a fire-and-forget member notification.
type Notifier interface {
	Enqueue(ctx context.Context, userID int, event, subject, body string) error
}

type service struct {
	repo         Repository
	resources    resource.Repository
	memberships  membership.Repository
	catalogRepo  catalog.Repository
	loyaltyTiers loyalty.Provider
	notifier     Notifier
	cancelWindow time.Duration
	now          func() time.Time
}

func NewService(
	repo Repository,
	resources resource.Repository,
	memberships membership.Repository,
	catalogRepo catalog.Repository,
	loyaltyTiers loyalty.Provider,
	notifier Notifier,
	cancelWindow time.Duration,
) Service {
	if cancelWindow <= 0 {
		cancelWindow = DefaultCancellationWindow
	}
	return &service{
		repo:         repo,
		resources:    resources,
		memberships:  memberships,
		catalogRepo:  catalogRepo,
		loyaltyTiers: loyaltyTiers,
		notifier:     notifier,
		cancelWindow: cancelWindow,
		now:          time.Now,
	}
}

func (s *service) notify(ctx context.Context, userID int, event, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Enqueue(ctx, userID, event, subject, body); err != nil {
		logger.Debugf("Notification enqueue failed for user %d: %v", userID, err)
	}
}

// resolveEntitlement derives the requester's current booking rights. The
// membership status is normalized at read time, so expiry and suspension
// elapse are already folded in.
func (s *service) resolveEntitlement(ctx context.Context, userID int) (entitlement.Entitlement, *membership.Membership, error) {
	m, err := s.memberships.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return entitlement.Entitlement{}, nil, ErrEntitlementExceeded
		}
		return entitlement.Entitlement{}, nil, err
	}

	status, _ := m.Normalize(s.now())

	mt, err := s.catalogRepo.GetType(ctx, m.MembershipTypeID)
	if err != nil {
		return entitlement.Entitlement{}, nil, err
	}

	tier, err := s.loyaltyTiers.CurrentTier(ctx, userID)
	if err != nil {
		tier = loyalty.TierBronze
	}

	return entitlement.Resolve(*mt, status, tier), m, nil
}

func (s *service) Create(ctx context.Context, userID int, req CreateRequest) (*Reservation, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	} else {
		existing, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	ent, m, err := s.resolveEntitlement(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ent.Active {
		return nil, ErrEntitlementExceeded
	}

	switch req.Type {
	case TypeGroupClass:
		return s.createGroupClass(ctx, userID, key, req, ent, m)
	case TypePersonalTraining:
		return s.createInterval(ctx, userID, key, req, ent, m, TypePersonalTraining)
	case TypeSpecializedSpace:
		return s.createInterval(ctx, userID, key, req, ent, m, TypeSpecializedSpace)
	default:
		return nil, ErrInvalidTimeRange
	}
}

func (s *service) checkQuota(ctx context.Context, userID int, rtype Type, quota int, periodStart time.Time) error {
	if quota == entitlement.Unlimited {
		return nil
	}
	if quota <= 0 {
		return ErrEntitlementExceeded
	}

	used, err := s.repo.CountInPeriod(ctx, userID, rtype, periodStart)
	if err != nil {
		return err
	}
	if used >= quota {
		return ErrEntitlementExceeded
	}

	return nil
}

func (s *service) createGroupClass(ctx context.Context, userID int, key string, req CreateRequest, ent entitlement.Entitlement, m *membership.Membership) (*Reservation, error) {
	if req.GroupClassID == nil {
		return nil, ErrResourceNotFound
	}

	gc, err := s.resources.GetGroupClass(ctx, *req.GroupClassID)
	if err != nil {
		return nil, ErrResourceNotFound
	}

	if gc.StartTime.Before(s.now()) {
		return nil, ErrInvalidTimeRange
	}

	if !ent.AllowsLocation(gc.LocationID, m.HomeLocationID) {
		return nil, ErrEntitlementExceeded
	}

	if err := s.checkQuota(ctx, userID, TypeGroupClass, ent.QuotaFor(string(TypeGroupClass)), m.CurrentPeriodStart()); err != nil {
		return nil, err
	}

	res, err := s.repo.ReserveGroupClass(ctx, GroupClassParams{
		UserID:         userID,
		IdempotencyKey: key,
		GroupClassID:   gc.ID,
		LocationID:     gc.LocationID,
		StartTime:      gc.StartTime,
		EndTime:        gc.EndTime,
	})
	return s.finishReserve(ctx, res, err, userID, key, TypeGroupClass)
}

func (s *service) createInterval(ctx context.Context, userID int, key string, req CreateRequest, ent entitlement.Entitlement, m *membership.Membership, rtype Type) (*Reservation, error) {
	start, end, err := parseTimeRange(req.StartTime, req.EndTime, s.now())
	if err != nil {
		return nil, err
	}

	var (
		resourceID int
		locationID int
	)

	switch rtype {
	case TypePersonalTraining:
		if req.InstructorID == nil {
			return nil, ErrResourceNotFound
		}
		ins, err := s.resources.GetInstructor(ctx, *req.InstructorID)
		if err != nil {
			return nil, ErrResourceNotFound
		}
		resourceID, locationID = ins.ID, ins.LocationID

		if err := s.checkQuota(ctx, userID, rtype, ent.QuotaFor(string(rtype)), m.CurrentPeriodStart()); err != nil {
			return nil, err
		}

	case TypeSpecializedSpace:
		if req.SpaceID == nil {
			return nil, ErrResourceNotFound
		}
		sp, err := s.resources.GetSpace(ctx, *req.SpaceID)
		if err != nil {
			return nil, ErrResourceNotFound
		}
		resourceID, locationID = sp.ID, sp.LocationID

		// QuotaFor yields Unlimited or 0 for spaces, so this never
		// touches the usage count.
		if err := s.checkQuota(ctx, userID, rtype, ent.QuotaFor(string(rtype)), m.CurrentPeriodStart()); err != nil {
			return nil, err
		}
	}

	if !ent.AllowsLocation(locationID, m.HomeLocationID) {
		return nil, ErrEntitlementExceeded
	}

	params := IntervalParams{
		UserID:         userID,
		IdempotencyKey: key,
		ResourceID:     resourceID,
		LocationID:     locationID,
		StartTime:      start,
		EndTime:        end,
	}

	var res *Reservation
	if rtype == TypePersonalTraining {
		res, err = s.repo.ReserveInstructor(ctx, params)
	} else {
		res, err = s.repo.ReserveSpace(ctx, params)
	}
	return s.finishReserve(ctx, res, err, userID, key, rtype)
}

// finishReserve translates repository outcomes into the service's error
// kinds. A duplicate idempotency key means a concurrent retry of the same
// logical request already won; the stored reservation is the answer.
func (s *service) finishReserve(ctx context.Context, res *Reservation, err error, userID int, key string, rtype Type) (*Reservation, error) {
	if err == nil {
		metrics.RecordReservation(string(rtype))
		s.notify(ctx, userID, "reservation_confirmed", "Reservation confirmed",
			"Your "+string(rtype)+" reservation on "+res.StartTime.Format("Jan 2, 2006 at 3:04 PM")+" is confirmed.")
		return res, nil
	}

	switch {
	case errors.Is(err, ErrCapacityExhausted):
		metrics.RecordReservationConflict(string(rtype))
		return nil, ErrSlotNoLongerAvailable
	case errors.Is(err, ErrResourceMissing):
		return nil, ErrResourceNotFound
	case errors.Is(err, ErrDuplicateKey):
		existing, ferr := s.repo.FindByIdempotencyKey(ctx, userID, key)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, ErrSlotNoLongerAvailable
		}
		return existing, nil
	default:
		return nil, err
	}
}

func (s *service) Cancel(ctx context.Context, id int, actor Actor) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrReservationNotFound
	}

	if !actor.IsOperator() {
		if res.UserID != actor.UserID {
			return ErrNotOwner
		}
		if s.now().After(res.StartTime.Add(-s.cancelWindow)) {
			return ErrCancellationWindowClosed
		}
	}

	if err := s.repo.CancelActive(ctx, id); err != nil {
		if errors.Is(err, ErrNotFoundOrNotActive) {
			return ErrReservationNotFound
		}
		return err
	}

	role := actor.Role
	if role == "" {
		role = "member"
	}
	metrics.RecordReservationCancellation(role)
	s.notify(ctx, res.UserID, "reservation_cancelled", "Reservation cancelled",
		"Your reservation on "+res.StartTime.Format("Jan 2, 2006 at 3:04 PM")+" was cancelled.")

	return nil
}

// CancelFutureForUser is the lifecycle cascade entry point: it voids all of
// a user's future active reservations with the operator override, releasing
// their capacity. Individual failures are collected, not fatal.
func (s *service) CancelFutureForUser(ctx context.Context, userID int, from time.Time) (int, []membership.CascadeFailure, error) {
	future, err := s.repo.ListActiveFutureByUser(ctx, userID, from)
	if err != nil {
		return 0, nil, err
	}

	cancelled := 0
	var failures []membership.CascadeFailure
	for _, res := range future {
		if err := s.repo.CancelActive(ctx, res.ID); err != nil {
			if errors.Is(err, ErrNotFoundOrNotActive) {
				// Raced with a direct cancel, already released.
				continue
			}
			failures = append(failures, membership.CascadeFailure{
				ReservationID: res.ID,
				Reason:        err.Error(),
			})
			continue
		}
		cancelled++
		metrics.RecordReservationCancellation("operator")
	}

	if len(failures) > 0 {
		logger.Warnf("Cascade for user %d: %d cancelled, %d failed", userID, cancelled, len(failures))
	}

	return cancelled, failures, nil
}

func (s *service) ListForUser(ctx context.Context, userID int) ([]Reservation, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListForGroupClass(ctx context.Context, groupClassID int) ([]Reservation, error) {
	return s.repo.ListByGroupClass(ctx, groupClassID)
}

func (s *service) MarkCompleted(ctx context.Context, id int) error {
	return s.markElapsed(ctx, id, s.repo.MarkCompleted)
}

func (s *service) MarkNoShow(ctx context.Context, id int) error {
	return s.markElapsed(ctx, id, s.repo.MarkNoShow)
}

func (s *service) markElapsed(ctx context.Context, id int, mark func(context.Context, int) error) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrReservationNotFound
	}

	if res.EndTime.After(s.now()) {
		return ErrSlotNotElapsed
	}

	if err := mark(ctx, id); err != nil {
		if errors.Is(err, ErrNotFoundOrNotActive) {
			return ErrReservationNotFound
		}
		return err
	}

	return nil
}

func parseTimeRange(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}

	if !end.After(start) || start.Before(now) {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}

	return start, end, nil
}
