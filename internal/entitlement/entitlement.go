package entitlement

import (
	"gymcore/internal/catalog"
	"gymcore/internal/loyalty"
	"gymcore/internal/membership"
)

// Unlimited marks a quota with no cap.
const Unlimited = -1

// Entitlement is the computed set of booking rights a member currently
// holds. A zero Entitlement grants nothing.
type Entitlement struct {
	Active bool

	// GroupClassesPerPeriod is the group-class quota for the billing
	// period, Unlimited for no cap.
	GroupClassesPerPeriod int

	PersonalTrainingPerPeriod int

	SpecializedSpaceAccess bool

	// AllLocations grants access beyond the membership's home location.
	AllLocations bool

	GuestPassesPerMonth int
}

// Resolve derives the effective entitlement from the membership type, the
// normalized membership status and the loyalty tier. Pure: no clocks, no
// side effects, safe to call on every booking attempt.
func Resolve(t catalog.MembershipType, status membership.Status, tier loyalty.Tier) Entitlement {
	// Anything but active grants no new bookings. Existing future
	// reservations are the lifecycle manager's problem, not ours.
	if status != membership.StatusActive {
		return Entitlement{}
	}

	benefits := tier.Benefits()

	e := Entitlement{
		Active:                    true,
		GroupClassesPerPeriod:     t.GroupClassSessionsIncluded,
		PersonalTrainingPerPeriod: t.PersonalTrainingIncluded,
		SpecializedSpaceAccess:    t.SpecializedSpacesIncluded,
		AllLocations:              t.AccessToAllLocations,
		GuestPassesPerMonth:       benefits.FreeGuestPassesPerMonth,
	}

	// Loyalty extends the type's cap, it never overrides it. No effect on
	// an unlimited allowance.
	if e.GroupClassesPerPeriod != Unlimited {
		e.GroupClassesPerPeriod += benefits.AdditionalClassesPerMonth
	}

	return e
}

// QuotaFor returns the per-period quota for a reservation kind, Unlimited
// when uncapped, 0 when the kind is not included at all.
func (e Entitlement) QuotaFor(kind string) int {
	if !e.Active {
		return 0
	}

	switch kind {
	case "group_class":
		return e.GroupClassesPerPeriod
	case "personal_training":
		return e.PersonalTrainingPerPeriod
	case "specialized_space":
		if e.SpecializedSpaceAccess {
			return Unlimited
		}
		return 0
	default:
		return 0
	}
}

// AllowsLocation reports whether the member may book at the given location.
// A missing home location with single-location access denies everything,
// matching the catalog's intent for location-scoped types.
func (e Entitlement) AllowsLocation(locationID int, homeLocationID *int) bool {
	if !e.Active {
		return false
	}
	if e.AllLocations {
		return true
	}
	return homeLocationID != nil && *homeLocationID == locationID
}
