package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentFixturePolicy(premium float64) Policy {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	return Policy{
		ID:        "pol-1",
		Number:    "POL-2026-000001",
		Premium:   PremiumBreakdown{FinalPremium: premium},
		StartDate: start,
	}
}

func TestNewPremiumPayment(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)

	t.Run("tax and final amount", func(t *testing.T) {
		policy := paymentFixturePolicy(1200)
		got := NewPremiumPayment("pay-1", policy, now)

		assert.Equal(t, "pol-1", got.PolicyID)
		assert.Equal(t, 1200.0, got.Amount)
		// round(1200 * 0.18) and round(1200 * 1.18)
		assert.Equal(t, 216.0, got.TaxAmount)
		assert.Equal(t, 1416.0, got.FinalAmount)
		assert.Equal(t, PaymentStatusUnpaid, got.Status)
		assert.Equal(t, policy.StartDate, got.DueDate)
		assert.Nil(t, got.PaidAt)
	})

	t.Run("tax and final amount round independently", func(t *testing.T) {
		got := NewPremiumPayment("pay-2", paymentFixturePolicy(100.5), now)

		// tax = round(18.09) = 18, final = round(118.59) = 119:
		// amount + tax = 118.5, which is not the final amount.
		assert.Equal(t, 18.0, got.TaxAmount)
		assert.Equal(t, 119.0, got.FinalAmount)
		assert.NotEqual(t, got.Amount+got.TaxAmount, got.FinalAmount)
	})
}

func TestPremiumPaymentMarkPaid(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	payment := NewPremiumPayment("pay-1", paymentFixturePolicy(1200), now)

	require.NoError(t, payment.MarkPaid(now))
	assert.Equal(t, PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, now, *payment.PaidAt)

	// Paying twice is a conflict
	err := payment.MarkPaid(now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrPaymentAlreadyPaid)
	assert.Equal(t, now, *payment.PaidAt)
}
