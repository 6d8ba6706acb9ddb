package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportServiceGenerate(t *testing.T) {
	ctx := context.Background()

	apps := newFakeApplicationRepo(
		Application{ID: "a1", RiskScore: 20, Status: ApplicationStatusApproved},
		Application{ID: "a2", RiskScore: 45, Status: ApplicationStatusApproved},
		Application{ID: "a3", RiskScore: 75, Status: ApplicationStatusRejected},
		Application{ID: "a4", RiskScore: 60, Status: ApplicationStatusPending},
	)
	policies := newFakePolicyRepo()
	require.NoError(t, policies.Create(ctx, Policy{ID: "p1", ApplicationID: "a1"}))

	reports := newFakeReportRepo()
	svc := NewReportService(reports, apps, policies).(*reportService)
	svc.clock = func() time.Time { return scoringNow }

	report, err := svc.Generate(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, scoringNow, report.GeneratedAt)
	assert.Equal(t, 4, report.TotalApplications)
	assert.Equal(t, 1, report.TotalPolicies)
	assert.Equal(t, 2, report.ApprovedCount)
	assert.Equal(t, 1, report.RejectedCount)
	assert.Equal(t, 1, report.PendingCount)
	assert.Equal(t, 50.0, report.AverageRiskScore)
	assert.Equal(t, "50.0%", report.ApprovalRate)
	assert.Equal(t, map[string]int{
		RiskTierLow:      1,
		RiskTierModerate: 1,
		RiskTierHigh:     1,
		RiskTierSevere:   1,
	}, report.RiskTiers)

	// The snapshot is persisted and retrievable.
	stored, err := svc.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report, stored)
}

func TestReportServiceGetRequiresID(t *testing.T) {
	svc := NewReportService(newFakeReportRepo(), newFakeApplicationRepo(), newFakePolicyRepo())
	_, err := svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportServiceListDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	reports := newFakeReportRepo()
	require.NoError(t, reports.Create(ctx, RiskReport{ID: "r1"}))

	svc := NewReportService(reports, newFakeApplicationRepo(), newFakePolicyRepo())
	out, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

// limitRecordingReportRepo captures the limit handed to List.
type limitRecordingReportRepo struct {
	*fakeReportRepo
	lastLimit int
}

func (r *limitRecordingReportRepo) List(ctx context.Context, limit int) ([]RiskReport, error) {
	r.lastLimit = limit
	return r.fakeReportRepo.List(ctx, limit)
}

func TestReportServiceListClampsLimit(t *testing.T) {
	ctx := context.Background()
	reports := &limitRecordingReportRepo{fakeReportRepo: newFakeReportRepo()}
	svc := NewReportService(reports, newFakeApplicationRepo(), newFakePolicyRepo())

	_, err := svc.List(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, reports.lastLimit)
}
