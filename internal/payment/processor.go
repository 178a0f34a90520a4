package payment

import (
	"context"
	"errors"
)

var (
	ErrConfirmationNotFound = errors.New("payment confirmation not found")
	ErrConfirmationRejected = errors.New("payment confirmation was not accepted")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
)

// Confirmation is the processor's answer for a confirmation id handed to us
// by the purchase or renewal flow.
type Confirmation struct {
	ID          string `json:"id"`
	Accepted    bool   `json:"accepted"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// RefundRequest is emitted fire-and-forget on membership cancellation.
// Completion is reported back asynchronously by the processor and does not
// block anything in this core.
type RefundRequest struct {
	RequestID    string `json:"request_id"`
	UserID       int    `json:"user_id"`
	MembershipID int    `json:"membership_id"`
	AmountCents  int64  `json:"amount_cents"`
	Reason       string `json:"reason"`
}

type Processor interface {
	VerifyConfirmation(ctx context.Context, confirmationID string) (*Confirmation, error)
	RequestRefund(ctx context.Context, req RefundRequest) error
}
