package catalog

import "time"

type TypeName string

const (
	TypeBasic   TypeName = "basic"
	TypePremium TypeName = "premium"
	TypeElite   TypeName = "elite"
)

// MembershipType is an immutable catalog entry. Rows are seeded by
// migrations and never mutated at runtime.
type MembershipType struct {
	ID                         int      `db:"id" json:"id"`
	Name                       TypeName `db:"name" json:"name"`
	MonthlyPriceCents          int64    `db:"monthly_price_cents" json:"monthly_price_cents"`
	AccessToAllLocations       bool     `db:"access_to_all_locations" json:"access_to_all_locations"`
	GroupClassSessionsIncluded int      `db:"group_class_sessions_included" json:"group_class_sessions_included"`
	PersonalTrainingIncluded   int      `db:"personal_training_included" json:"personal_training_included"`
	SpecializedSpacesIncluded  bool     `db:"specialized_spaces_included" json:"specialized_spaces_included"`
	CreatedAt                  time.Time `db:"created_at" json:"created_at"`
}

// UnlimitedSessions marks a session allowance with no monthly cap.
const UnlimitedSessions = -1

func (t MembershipType) UnlimitedGroupClasses() bool {
	return t.GroupClassSessionsIncluded == UnlimitedSessions
}
