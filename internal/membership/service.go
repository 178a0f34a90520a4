package membership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gymcore/internal/catalog"
	"gymcore/internal/logger"
	"gymcore/internal/metrics"
	"gymcore/internal/payment"
)

var (
	ErrRenewalPayment          = errors.New("renewal payment was not confirmed")
	ErrSuspensionLimitExceeded = errors.New("suspension limit exceeded for the rolling year")
	ErrInvalidSuspensionPeriod = errors.New("suspension period must be between 15 and 90 days")
	ErrInvalidTransition       = errors.New("membership status does not allow this transition")
	ErrNotOwner                = errors.New("membership does not belong to this user")
)

// ReservationCanceller is the reservation manager surface the lifecycle
// cascade needs: bulk-cancel a user's future reservations with the operator
// override, releasing their capacity.
type ReservationCanceller interface {
	CancelFutureForUser(ctx context.Context, userID int, from time.Time) (cancelled int, failed []CascadeFailure, err error)
}

type CascadeFailure struct {
	ReservationID int    `json:"reservation_id"`
	Reason        string `json:"reason"`
}

// CascadeReport surfaces partial cascade failures for manual follow-up. The
// membership status change itself is never rolled back on cascade failure.
type CascadeReport struct {
	CancelledReservations int              `json:"cancelled_reservations"`
	Failures              []CascadeFailure `json:"failures,omitempty"`
}

type Service interface {
	GetForUser(ctx context.Context, userID int) (*Membership, error)
	Purchase(ctx context.Context, userID, membershipTypeID int, homeLocationID *int, autoRenewal bool) (*Membership, error)
	Activate(ctx context.Context, userID, membershipID int, paymentConfirmationID string) (*Membership, error)
	Renew(ctx context.Context, userID, membershipID int, paymentConfirmationID string, autoRenewal bool) (*Membership, error)
	Suspend(ctx context.Context, userID, membershipID, days int, reason string) (*Membership, *CascadeReport, error)
	Reactivate(ctx context.Context, userID, membershipID int) (*Membership, error)
	Cancel(ctx context.Context, userID, membershipID int, reason string, refundRequested bool) (*Membership, *CascadeReport, error)
}

// Notifier queues a fire-and-forget member notification.
type Notifier interface {
	Enqueue(ctx context.Context, userID int, event, subject, body string) error
}

type service struct {
	repo         Repository
	catalogRepo  catalog.Repository
	processor    payment.Processor
	reservations ReservationCanceller
	notifier     Notifier
	now          func() time.Time
}

func NewService(repo Repository, catalogRepo catalog.Repository, processor payment.Processor, reservations ReservationCanceller, notifier Notifier) Service {
	return &service{
		repo:         repo,
		catalogRepo:  catalogRepo,
		processor:    processor,
		reservations: reservations,
		notifier:     notifier,
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

// load fetches a membership, verifies ownership and applies lazy status
// normalization, writing the correction back before any business logic
// reads the status.
func (s *service) load(ctx context.Context, userID, membershipID int) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	if m.UserID != userID {
		return nil, ErrNotOwner
	}

	return s.normalize(ctx, m)
}

func (s *service) normalize(ctx context.Context, m *Membership) (*Membership, error) {
	status, changed := m.Normalize(s.now())
	if !changed {
		return m, nil
	}

	clearSuspension := m.Status == StatusSuspended
	if err := s.repo.SyncStatus(ctx, m.ID, m.Status, status, clearSuspension); err != nil {
		return nil, err
	}

	m.Status = status
	if clearSuspension {
		m.SuspensionReason.Valid = false
		m.SuspensionStart.Valid = false
		m.SuspensionEnd.Valid = false
	}

	return m, nil
}

func (s *service) GetForUser(ctx context.Context, userID int) (*Membership, error) {
	m, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.normalize(ctx, m)
}

func (s *service) Purchase(ctx context.Context, userID, membershipTypeID int, homeLocationID *int, autoRenewal bool) (*Membership, error) {
	if _, err := s.catalogRepo.GetType(ctx, membershipTypeID); err != nil {
		return nil, err
	}

	start := s.now()
	end := start.AddDate(0, 0, BillingPeriodDays)

	return s.repo.Create(ctx, userID, membershipTypeID, start, end, autoRenewal, homeLocationID)
}

func (s *service) Activate(ctx context.Context, userID, membershipID int, paymentConfirmationID string) (*Membership, error) {
	m, err := s.load(ctx, userID, membershipID)
	if err != nil {
		return nil, err
	}

	if m.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	conf, err := s.processor.VerifyConfirmation(ctx, paymentConfirmationID)
	if err != nil {
		return nil, err
	}
	if !conf.Accepted {
		return nil, ErrRenewalPayment
	}

	if err := s.repo.Activate(ctx, m.ID); err != nil {
		if errors.Is(err, ErrTransitionConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, m.ID)
}

// Renew extends the end date by exactly one billing period from the current
// end date, not from today, preserving continuity across late renewals. The
// extension is applied at most once per payment confirmation id: a replay
// returns the membership as-is.
func (s *service) Renew(ctx context.Context, userID, membershipID int, paymentConfirmationID string, autoRenewal bool) (*Membership, error) {
	m, err := s.load(ctx, userID, membershipID)
	if err != nil {
		return nil, err
	}

	if m.Status != StatusActive && m.Status != StatusExpired {
		return nil, ErrInvalidTransition
	}

	conf, err := s.processor.VerifyConfirmation(ctx, paymentConfirmationID)
	if err != nil {
		return nil, err
	}
	if !conf.Accepted {
		return nil, ErrRenewalPayment
	}

	newEnd := m.EndDate.AddDate(0, 0, BillingPeriodDays)

	err = s.repo.ExtendEnd(ctx, m.ID, newEnd, paymentConfirmationID, autoRenewal)
	if err != nil {
		if errors.Is(err, ErrDuplicateConfirmation) {
			// Already applied for this confirmation, treat the retry as
			// success without a second extension.
			return s.repo.GetByID(ctx, m.ID)
		}
		if errors.Is(err, ErrTransitionConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	metrics.RecordRenewal()
	logger.Infof("Membership %d renewed until %s", m.ID, newEnd.Format("2006-01-02"))
	s.notify(ctx, m.UserID, "membership_renewed", "Membership renewed",
		"Your membership now runs until "+newEnd.Format("January 2, 2006")+".")

	return s.repo.GetByID(ctx, m.ID)
}

func (s *service) Suspend(ctx context.Context, userID, membershipID, days int, reason string) (*Membership, *CascadeReport, error) {
	if days < MinSuspensionDays || days > MaxSuspensionDays {
		return nil, nil, ErrInvalidSuspensionPeriod
	}

	m, err := s.load(ctx, userID, membershipID)
	if err != nil {
		return nil, nil, err
	}

	if m.Status != StatusActive {
		return nil, nil, ErrInvalidTransition
	}

	now := s.now()
	used, err := s.repo.CountSuspensionsSince(ctx, m.ID, now.AddDate(-1, 0, 0))
	if err != nil {
		return nil, nil, err
	}
	if used >= MaxSuspensionsPerYear {
		return nil, nil, ErrSuspensionLimitExceeded
	}

	susp := Suspension{
		Reason:    reason,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, days),
	}

	// The suspension freezes access only: the end date stays where it is,
	// so the term itself is not extended.
	if err := s.repo.Suspend(ctx, m.ID, susp); err != nil {
		if errors.Is(err, ErrTransitionConflict) {
			return nil, nil, ErrInvalidTransition
		}
		return nil, nil, err
	}

	metrics.RecordSuspension()
	s.notify(ctx, m.UserID, "membership_suspended", "Membership suspended",
		"Your membership is suspended until "+susp.EndDate.Format("January 2, 2006")+".")
	report := s.cascadeCancel(ctx, m.UserID, now)

	updated, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, report, err
	}

	return updated, report, nil
}

func (s *service) Reactivate(ctx context.Context, userID, membershipID int) (*Membership, error) {
	m, err := s.load(ctx, userID, membershipID)
	if err != nil {
		return nil, err
	}

	// A suspension whose period already elapsed was folded back by
	// normalization above, so reaching here suspended means an explicit
	// early reactivation.
	if m.Status != StatusSuspended {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Reactivate(ctx, m.ID, s.now()); err != nil {
		if errors.Is(err, ErrTransitionConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, m.ID)
}

func (s *service) Cancel(ctx context.Context, userID, membershipID int, reason string, refundRequested bool) (*Membership, *CascadeReport, error) {
	m, err := s.load(ctx, userID, membershipID)
	if err != nil {
		return nil, nil, err
	}

	if m.Status != StatusActive && m.Status != StatusSuspended {
		return nil, nil, ErrInvalidTransition
	}

	now := s.now()

	if err := s.repo.Cancel(ctx, m.ID, reason); err != nil {
		if errors.Is(err, ErrTransitionConflict) {
			return nil, nil, ErrInvalidTransition
		}
		return nil, nil, err
	}

	metrics.RecordMembershipCancellation(refundRequested)
	s.notify(ctx, m.UserID, "membership_cancelled", "Membership cancelled",
		"Your membership has been cancelled. Future reservations are being released.")

	if refundRequested {
		s.requestRefund(m, reason, now)
	}

	report := s.cascadeCancel(ctx, m.UserID, now)

	updated, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, report, err
	}

	return updated, report, nil
}

// requestRefund emits a prorated refund request to the payment processor.
// Fire-and-forget: refund completion comes back asynchronously and never
// blocks or rolls back the cancellation.
func (s *service) requestRefund(m *Membership, reason string, now time.Time) {
	mt, err := s.catalogRepo.GetType(context.Background(), m.MembershipTypeID)
	if err != nil {
		logger.Errorf("Refund skipped for membership %d: type lookup failed: %v", m.ID, err)
		metrics.RecordRefundRequest("error")
		return
	}

	amount := ProratedRefundCents(mt.MonthlyPriceCents, now, m.EndDate)
	if amount <= 0 {
		logger.Infof("No refund due for membership %d", m.ID)
		return
	}

	refund := payment.RefundRequest{
		RequestID:    uuid.NewString(),
		UserID:       m.UserID,
		MembershipID: m.ID,
		AmountCents:  amount,
		Reason:       reason,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.processor.RequestRefund(ctx, refund); err != nil {
			logger.Errorf("Refund request %s for membership %d failed: %v", refund.RequestID, m.ID, err)
			metrics.RecordRefundRequest("error")
			return
		}
		metrics.RecordRefundRequest("requested")
	}()
}

// ProratedRefundCents computes monthlyPrice x daysRemaining / daysInPeriod,
// floored to the smallest currency unit. Days remaining are whole days from
// now to the end date, clamped to the billing period.
func ProratedRefundCents(monthlyPriceCents int64, now, endDate time.Time) int64 {
	if !endDate.After(now) {
		return 0
	}

	daysRemaining := int64(endDate.Sub(now).Hours() / 24)
	if daysRemaining > BillingPeriodDays {
		daysRemaining = BillingPeriodDays
	}

	return monthlyPriceCents * daysRemaining / BillingPeriodDays
}

// cascadeCancel voids all of the user's future reservations after a
// suspension or cancellation. The membership write has already committed;
// partial failures are reported, logged and left for manual follow-up.
func (s *service) cascadeCancel(ctx context.Context, userID int, from time.Time) *CascadeReport {
	cancelled, failed, err := s.reservations.CancelFutureForUser(ctx, userID, from)
	report := &CascadeReport{CancelledReservations: cancelled, Failures: failed}

	if err != nil {
		logger.Errorf("Reservation cascade for user %d failed: %v", userID, err)
		metrics.RecordCascadeFailure()
		report.Failures = append(report.Failures, CascadeFailure{Reason: err.Error()})
		return report
	}

	for _, f := range failed {
		logger.Errorf("Reservation %d could not be cancelled in cascade for user %d: %s", f.ReservationID, userID, f.Reason)
		metrics.RecordCascadeFailure()
	}

	return report
}
