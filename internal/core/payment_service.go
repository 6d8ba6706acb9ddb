package core

import (
	"context"
	"fmt"
	"time"
)

type PaymentService interface {
	Get(ctx context.Context, id string) (PremiumPayment, error)
	ListByPolicy(ctx context.Context, policyID string) ([]PremiumPayment, error)

	// RecordPayment transitions a payment from UNPAID to PAID
	RecordPayment(ctx context.Context, id string) (PremiumPayment, error)
}

type paymentService struct {
	payments PaymentRepo
	recorded func()
	clock    func() time.Time
}

// NewPaymentService builds the payment service. recorded is invoked for
// every payment transitioned to PAID (used for the payments counter metric);
// it may be nil.
func NewPaymentService(payments PaymentRepo, recorded func()) PaymentService {
	if recorded == nil {
		recorded = func() {}
	}
	return &paymentService{payments: payments, recorded: recorded, clock: time.Now}
}

func (s *paymentService) Get(ctx context.Context, id string) (PremiumPayment, error) {
	if id == "" {
		return PremiumPayment{}, fmt.Errorf("%w: missing payment ID", ErrValidation)
	}
	return s.payments.Get(ctx, id)
}

func (s *paymentService) ListByPolicy(ctx context.Context, policyID string) ([]PremiumPayment, error) {
	if policyID == "" {
		return nil, fmt.Errorf("%w: missing policy ID", ErrValidation)
	}
	return s.payments.ListByPolicyID(ctx, policyID)
}

func (s *paymentService) RecordPayment(ctx context.Context, id string) (PremiumPayment, error) {
	// 1) Load payment
	payment, err := s.Get(ctx, id)
	if err != nil {
		return PremiumPayment{}, err
	}

	// 2) Transition
	if err := payment.MarkPaid(s.clock()); err != nil {
		return PremiumPayment{}, err
	}

	// 3) Persist
	if err := s.payments.Update(ctx, payment); err != nil {
		return PremiumPayment{}, err
	}
	s.recorded()

	return payment, nil
}
