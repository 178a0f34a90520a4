package reservation

import "time"

type Type string

const (
	TypeGroupClass       Type = "group_class"
	TypePersonalTraining Type = "personal_training"
	TypeSpecializedSpace Type = "specialized_space"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

type Reservation struct {
	ID             int    `db:"id" json:"id"`
	UserID         int    `db:"user_id" json:"user_id"`
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	Type           Type   `db:"type" json:"type"`

	// Exactly one of the three refs is set, matching Type.
	GroupClassID *int `db:"group_class_id" json:"group_class_id,omitempty"`
	InstructorID *int `db:"instructor_id" json:"instructor_id,omitempty"`
	SpaceID      *int `db:"space_id" json:"space_id,omitempty"`

	LocationID int       `db:"location_id" json:"location_id"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	Status     Status    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CreateRequest is a booking request. The idempotency key makes the whole
// create call safe to retry; empty means one is generated.
type CreateRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Type           Type   `json:"type" binding:"required"`
	GroupClassID   *int   `json:"group_class_id,omitempty"`
	InstructorID   *int   `json:"instructor_id,omitempty"`
	SpaceID        *int   `json:"space_id,omitempty"`
	StartTime      string `json:"start_time,omitempty"`
	EndTime        string `json:"end_time,omitempty"`
}

// Actor identifies who is acting on a reservation. Operator and admin
// actors bypass the member cancellation window.
type Actor struct {
	UserID int
	Role   string
}

func (a Actor) IsOperator() bool {
	return a.Role == "operator" || a.Role == "admin"
}
