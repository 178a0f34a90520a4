package payment

import (
	"context"
	"sync"
)

// FakeProcessor accepts every confirmation and records refund requests.
// Used in tests and when no processor is configured.
type FakeProcessor struct {
	mu       sync.Mutex
	Rejected map[string]bool
	Refunds  []RefundRequest

	FailVerify bool
	FailRefund bool
}

func NewFakeProcessor() *FakeProcessor {
	return &FakeProcessor{Rejected: make(map[string]bool)}
}

func (f *FakeProcessor) VerifyConfirmation(ctx context.Context, confirmationID string) (*Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailVerify {
		return nil, ErrProcessorUnavailable
	}
	if f.Rejected[confirmationID] {
		return &Confirmation{ID: confirmationID, Accepted: false}, nil
	}
	return &Confirmation{ID: confirmationID, Accepted: true, Currency: "USD"}, nil
}

func (f *FakeProcessor) RequestRefund(ctx context.Context, req RefundRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailRefund {
		return ErrProcessorUnavailable
	}
	f.Refunds = append(f.Refunds, req)
	return nil
}

func (f *FakeProcessor) RefundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Refunds)
}
