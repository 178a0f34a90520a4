package membership

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
	StatusInactive  Status = "inactive"
)

const (
	// BillingPeriodDays is the length of one billing period. Renewal always
	// extends the end date by exactly this much.
	BillingPeriodDays = 30

	MinSuspensionDays = 15
	MaxSuspensionDays = 90

	// MaxSuspensionsPerYear bounds suspensions within a rolling 12-month window.
	MaxSuspensionsPerYear = 2
)

type Membership struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	MembershipTypeID int       `db:"membership_type_id" json:"membership_type_id"`
	Status           Status    `db:"status" json:"status"`
	StartDate        time.Time `db:"start_date" json:"start_date"`
	EndDate          time.Time `db:"end_date" json:"end_date"`
	SuspensionsUsed  int       `db:"suspensions_used" json:"suspensions_used"`
	AutoRenewal      bool      `db:"auto_renewal" json:"auto_renewal"`

	// HomeLocationID scopes access for types without all-location access.
	HomeLocationID *int `db:"home_location_id" json:"home_location_id,omitempty"`

	SuspensionReason sql.NullString `db:"suspension_reason" json:"-"`
	SuspensionStart  sql.NullTime   `db:"suspension_start" json:"-"`
	SuspensionEnd    sql.NullTime   `db:"suspension_end" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Suspension is the exported view of the current suspension, present iff the
// membership is suspended.
type Suspension struct {
	Reason    string    `json:"reason"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (m *Membership) CurrentSuspension() *Suspension {
	if m.Status != StatusSuspended || !m.SuspensionEnd.Valid {
		return nil
	}
	return &Suspension{
		Reason:    m.SuspensionReason.String,
		StartDate: m.SuspensionStart.Time,
		EndDate:   m.SuspensionEnd.Time,
	}
}

// CurrentPeriodStart is the opening instant of the running billing period:
// one period back from the end date. Entitlement quotas count consumption
// from this instant.
func (m *Membership) CurrentPeriodStart() time.Time {
	return m.EndDate.AddDate(0, 0, -BillingPeriodDays)
}

// Normalize derives the time-corrected status without touching storage.
// Expiry and suspension elapse are read-time derivations, not timer jobs:
// a suspension whose end has passed folds back to active, and an active
// membership past its end date becomes expired. Expiry wins when both
// apply, since a suspension freezes access but never extends the term.
func (m *Membership) Normalize(now time.Time) (Status, bool) {
	status := m.Status

	if status == StatusSuspended && m.SuspensionEnd.Valid && now.After(m.SuspensionEnd.Time) {
		status = StatusActive
	}

	if status == StatusActive && now.After(m.EndDate) {
		status = StatusExpired
	}

	return status, status != m.Status
}
