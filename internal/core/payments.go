package core

import (
	"context"
	"fmt"
	"math"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// PremiumTaxRate is the tax applied on top of every premium payment.
const PremiumTaxRate = 0.18

// PremiumPayment is the initial payment record synthesized at policy
// issuance. Exactly one exists per policy; recurring billing cycles are not
// modelled.
//
// TaxAmount and FinalAmount are each rounded independently from the premium,
// so FinalAmount is not defined as Amount + TaxAmount and the two can
// disagree by a unit on some premiums. Kept for compatibility with the
// records already in the store.
type PremiumPayment struct {
	ID          string        `json:"id"`
	PolicyID    string        `json:"policy_id"`
	Amount      float64       `json:"amount"`
	TaxAmount   float64       `json:"tax_amount"`
	FinalAmount float64       `json:"final_amount"`
	Status      PaymentStatus `json:"status"`
	DueDate     time.Time     `json:"due_date"` // policy start date
	CreatedAt   time.Time     `json:"created_at"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
}

type PaymentRepo interface {
	Create(ctx context.Context, p PremiumPayment) error
	Get(ctx context.Context, id string) (PremiumPayment, error)
	ListByPolicyID(ctx context.Context, policyID string) ([]PremiumPayment, error)
	Update(ctx context.Context, p PremiumPayment) error
}

// NewPremiumPayment synthesizes the initial payment for a freshly issued
// policy.
func NewPremiumPayment(id string, policy Policy, now time.Time) PremiumPayment {
	premium := policy.Premium.FinalPremium
	return PremiumPayment{
		ID:          id,
		PolicyID:    policy.ID,
		Amount:      premium,
		TaxAmount:   math.Round(premium * PremiumTaxRate),
		FinalAmount: math.Round(premium * (1 + PremiumTaxRate)),
		Status:      PaymentStatusUnpaid,
		DueDate:     policy.StartDate,
		CreatedAt:   now,
	}
}

// MarkPaid transitions the payment to PAID. Paying twice is a conflict.
func (p *PremiumPayment) MarkPaid(now time.Time) error {
	if p.Status == PaymentStatusPaid {
		return ErrPaymentAlreadyPaid
	}
	p.Status = PaymentStatusPaid
	p.PaidAt = &now
	return nil
}

var (
	ErrPaymentNotFound    = fmt.Errorf("%w: payment not found", ErrNotFound)
	ErrPaymentAlreadyPaid = fmt.Errorf("%w: payment already recorded as paid", ErrInvalidState)
)
