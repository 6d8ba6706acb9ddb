package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicyServiceForTest(apps *fakeApplicationRepo) (*policyService, *fakePolicyRepo, *fakePaymentRepo) {
	policies := newFakePolicyRepo()
	payments := newFakePaymentRepo()
	svc := NewPolicyService(policies, payments, apps, nil).(*policyService)
	svc.clock = func() time.Time { return scoringNow }
	return svc, policies, payments
}

// flakyPaymentRepo fails a configured number of Create calls before
// delegating to the in-memory fake.
type flakyPaymentRepo struct {
	*fakePaymentRepo
	failures int
}

func (r *flakyPaymentRepo) Create(ctx context.Context, p PremiumPayment) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("payments store unavailable")
	}
	return r.fakePaymentRepo.Create(ctx, p)
}

func approvedApplication() Application {
	return Application{
		ID:          "app-1",
		CustomerID:  "cust-1",
		ProductSlug: "motor-standard",
		Coverage:    CoverageStandard,
		RiskScore:   13,
		Premium: PremiumBreakdown{
			BasePremium:        1500,
			PremiumFactor:      0.8,
			CoverageMultiplier: 1.0,
			RiskAdjustment:     -300,
			FinalPremium:       1200,
		},
		Status: ApplicationStatusApproved,
	}
}

func TestIssueFromApplication(t *testing.T) {
	ctx := context.Background()
	apps := newFakeApplicationRepo(approvedApplication())
	svc, policies, payments := newPolicyServiceForTest(apps)

	policy, err := svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)

	assert.Equal(t, "POL-2026-000001", policy.Number)
	assert.Equal(t, "app-1", policy.ApplicationID)
	assert.Equal(t, "cust-1", policy.CustomerID)
	assert.Equal(t, int64(DefaultCoverageAmount), policy.CoverageAmount)
	assert.Equal(t, PolicyStatusActive, policy.Status)
	assert.Equal(t, scoringNow, policy.StartDate)
	assert.Equal(t, scoringNow.AddDate(1, 0, 0), policy.EndDate)
	assert.Equal(t, scoringNow.AddDate(0, 11, 0), policy.RenewalDate)
	assert.Equal(t, 1200.0, policy.Premium.FinalPremium)

	stored, err := policies.GetByApplicationID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, policy, stored)

	// Issuance synthesizes the single initial payment.
	bill, err := payments.ListByPolicyID(ctx, policy.ID)
	require.NoError(t, err)
	require.Len(t, bill, 1)
	assert.Equal(t, 1200.0, bill[0].Amount)
	assert.Equal(t, 216.0, bill[0].TaxAmount)
	assert.Equal(t, 1416.0, bill[0].FinalAmount)
	assert.Equal(t, PaymentStatusUnpaid, bill[0].Status)
	assert.Equal(t, policy.StartDate, bill[0].DueDate)

	// The application records the policy so the issuance poll skips it.
	app, err := apps.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, policy.ID, app.PolicyID)
}

func TestIssueFromApplicationHealsMissingPayment(t *testing.T) {
	ctx := context.Background()
	apps := newFakeApplicationRepo(approvedApplication())
	policies := newFakePolicyRepo()
	payments := &flakyPaymentRepo{fakePaymentRepo: newFakePaymentRepo(), failures: 1}

	var issuedCount int
	svc := NewPolicyService(policies, payments, apps, func() { issuedCount++ }).(*policyService)
	svc.clock = func() time.Time { return scoringNow }

	// First attempt writes the policy but dies on the payment insert.
	_, err := svc.IssueFromApplication(ctx, "app-1")
	require.Error(t, err)

	stranded, err := policies.GetByApplicationID(ctx, "app-1")
	require.NoError(t, err)
	bill, err := payments.ListByPolicyID(ctx, stranded.ID)
	require.NoError(t, err)
	require.Empty(t, bill)

	// The retry returns the existing policy and backfills the payment and
	// the application back-reference.
	policy, err := svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, stranded.ID, policy.ID)

	bill, err = payments.ListByPolicyID(ctx, policy.ID)
	require.NoError(t, err)
	require.Len(t, bill, 1)
	assert.Equal(t, 1416.0, bill[0].FinalAmount)

	app, err := apps.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, policy.ID, app.PolicyID)

	// The counter only fires for a complete fresh issuance.
	assert.Equal(t, 0, issuedCount)
}

func TestIssueFromApplicationCountsFreshIssuanceOnce(t *testing.T) {
	ctx := context.Background()
	apps := newFakeApplicationRepo(approvedApplication())
	var issuedCount int
	svc := NewPolicyService(newFakePolicyRepo(), newFakePaymentRepo(), apps, func() { issuedCount++ }).(*policyService)
	svc.clock = func() time.Time { return scoringNow }

	_, err := svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)
	_, err = svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)

	assert.Equal(t, 1, issuedCount)
}

func TestIssueFromApplicationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	apps := newFakeApplicationRepo(approvedApplication())
	svc, _, payments := newPolicyServiceForTest(apps)

	first, err := svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)

	second, err := svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Number, second.Number)

	bill, err := payments.ListByPolicyID(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, bill, 1)
}

func TestIssueFromApplicationRequiresApproval(t *testing.T) {
	ctx := context.Background()

	for _, status := range []ApplicationStatus{ApplicationStatusPending, ApplicationStatusRejected} {
		app := approvedApplication()
		app.Status = status
		svc, _, _ := newPolicyServiceForTest(newFakeApplicationRepo(app))

		_, err := svc.IssueFromApplication(ctx, "app-1")
		assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
	}
}

func TestIssueFromApplicationUnknownApplication(t *testing.T) {
	svc, _, _ := newPolicyServiceForTest(newFakeApplicationRepo())
	_, err := svc.IssueFromApplication(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestPolicyServiceLookupsRequireKeys(t *testing.T) {
	svc, _, _ := newPolicyServiceForTest(newFakeApplicationRepo())

	_, err := svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetByNumber(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPolicyNumbersAreSequential(t *testing.T) {
	ctx := context.Background()
	first := approvedApplication()
	second := approvedApplication()
	second.ID = "app-2"
	apps := newFakeApplicationRepo(first, second)
	svc, _, _ := newPolicyServiceForTest(apps)

	p1, err := svc.IssueFromApplication(ctx, "app-1")
	require.NoError(t, err)
	p2, err := svc.IssueFromApplication(ctx, "app-2")
	require.NoError(t, err)

	assert.Equal(t, "POL-2026-000001", p1.Number)
	assert.Equal(t, "POL-2026-000002", p2.Number)
}
