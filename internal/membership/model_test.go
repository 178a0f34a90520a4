package membership

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMembership_Normalize(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		membership  Membership
		wantStatus  Status
		wantChanged bool
	}{
		{
			name:       "active within term stays active",
			membership: Membership{Status: StatusActive, EndDate: now.AddDate(0, 0, 5)},
			wantStatus: StatusActive,
		},
		{
			name:        "active past end date expires",
			membership:  Membership{Status: StatusActive, EndDate: now.AddDate(0, 0, -1)},
			wantStatus:  StatusExpired,
			wantChanged: true,
		},
		{
			name: "elapsed suspension folds back to active",
			membership: Membership{
				Status:        StatusSuspended,
				EndDate:       now.AddDate(0, 0, 10),
				SuspensionEnd: sql.NullTime{Time: now.AddDate(0, 0, -2), Valid: true},
			},
			wantStatus:  StatusActive,
			wantChanged: true,
		},
		{
			name: "running suspension stays suspended",
			membership: Membership{
				Status:        StatusSuspended,
				EndDate:       now.AddDate(0, 0, 10),
				SuspensionEnd: sql.NullTime{Time: now.AddDate(0, 0, 8), Valid: true},
			},
			wantStatus: StatusSuspended,
		},
		{
			name: "expiry wins over elapsed suspension",
			membership: Membership{
				Status:        StatusSuspended,
				EndDate:       now.AddDate(0, 0, -1),
				SuspensionEnd: sql.NullTime{Time: now.AddDate(0, 0, -3), Valid: true},
			},
			wantStatus:  StatusExpired,
			wantChanged: true,
		},
		{
			name: "suspended past end date still waits for the suspension",
			membership: Membership{
				Status:        StatusSuspended,
				EndDate:       now.AddDate(0, 0, -1),
				SuspensionEnd: sql.NullTime{Time: now.AddDate(0, 0, 5), Valid: true},
			},
			wantStatus: StatusSuspended,
		},
		{
			name:       "cancelled is terminal",
			membership: Membership{Status: StatusCancelled, EndDate: now.AddDate(0, 0, -1)},
			wantStatus: StatusCancelled,
		},
		{
			name:       "pending never expires on its own",
			membership: Membership{Status: StatusPending, EndDate: now.AddDate(0, 0, -1)},
			wantStatus: StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, changed := tt.membership.Normalize(now)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestMembership_CurrentPeriodStart(t *testing.T) {
	end := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	m := Membership{EndDate: end}

	assert.Equal(t, end.AddDate(0, 0, -BillingPeriodDays), m.CurrentPeriodStart())
}

func TestMembership_CurrentSuspension(t *testing.T) {
	m := Membership{
		Status:           StatusSuspended,
		SuspensionReason: sql.NullString{String: "travel", Valid: true},
		SuspensionStart:  sql.NullTime{Time: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		SuspensionEnd:    sql.NullTime{Time: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Valid: true},
	}

	susp := m.CurrentSuspension()
	assert.NotNil(t, susp)
	assert.Equal(t, "travel", susp.Reason)

	m.Status = StatusActive
	assert.Nil(t, m.CurrentSuspension())
}
