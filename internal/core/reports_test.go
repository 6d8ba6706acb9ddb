package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithScore(score int, status ApplicationStatus) Application {
	return Application{RiskScore: score, Status: status}
}

func TestBuildRiskReportCounts(t *testing.T) {
	now := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	apps := []Application{
		appWithScore(10, ApplicationStatusApproved),  // low
		appWithScore(29, ApplicationStatusApproved),  // low
		appWithScore(35, ApplicationStatusApproved),  // moderate
		appWithScore(55, ApplicationStatusPending),   // high
		appWithScore(72, ApplicationStatusRejected),  // severe
	}
	policies := []Policy{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}

	got := BuildRiskReport("rep-1", apps, policies, now)

	assert.Equal(t, 5, got.TotalApplications)
	assert.Equal(t, 3, got.TotalPolicies)
	assert.Equal(t, 3, got.ApprovedCount)
	assert.Equal(t, 1, got.RejectedCount)
	assert.Equal(t, 1, got.PendingCount)

	assert.Equal(t, 2, got.RiskTiers[RiskTierLow])
	assert.Equal(t, 1, got.RiskTiers[RiskTierModerate])
	assert.Equal(t, 1, got.RiskTiers[RiskTierHigh])
	assert.Equal(t, 1, got.RiskTiers[RiskTierSevere])

	// avg = (10+29+35+55+72)/5 = 40.2
	assert.Equal(t, 40.2, got.AverageRiskScore)
	assert.Equal(t, "60.0%", got.ApprovalRate)
}

func TestBuildRiskReportAverageRounding(t *testing.T) {
	now := time.Now()
	apps := []Application{
		appWithScore(10, ApplicationStatusApproved),
		appWithScore(11, ApplicationStatusApproved),
		appWithScore(12, ApplicationStatusApproved),
	}

	got := BuildRiskReport("rep-1", apps, nil, now)
	// 33/3 = 11.0, rounded to one decimal
	assert.Equal(t, 11.0, got.AverageRiskScore)
	assert.Equal(t, "100.0%", got.ApprovalRate)
}

func TestBuildRiskReportRecommendations(t *testing.T) {
	now := time.Now()

	t.Run("healthy book stays neutral", func(t *testing.T) {
		apps := []Application{
			appWithScore(20, ApplicationStatusApproved),
			appWithScore(30, ApplicationStatusApproved),
			appWithScore(40, ApplicationStatusRejected),
			appWithScore(25, ApplicationStatusRejected),
		}

		got := BuildRiskReport("rep-1", apps, nil, now)
		assert.Equal(t, []string{recWithinRange}, got.Recommendations)
	})

	t.Run("elevated average triggers stricter rules", func(t *testing.T) {
		apps := []Application{
			appWithScore(65, ApplicationStatusApproved),
			appWithScore(70, ApplicationStatusRejected),
		}

		got := BuildRiskReport("rep-1", apps, nil, now)
		assert.Contains(t, got.Recommendations, recStricterRules)
	})

	t.Run("high approval rate flags adverse selection", func(t *testing.T) {
		apps := []Application{
			appWithScore(20, ApplicationStatusApproved),
			appWithScore(25, ApplicationStatusApproved),
			appWithScore(30, ApplicationStatusApproved),
			appWithScore(35, ApplicationStatusApproved),
			appWithScore(40, ApplicationStatusRejected),
		}

		// 4/5 = 80% is not above the threshold; add one more approval
		got := BuildRiskReport("rep-1", apps, nil, now)
		assert.NotContains(t, got.Recommendations, recReviewCriteria)

		apps = append(apps, appWithScore(20, ApplicationStatusApproved))
		got = BuildRiskReport("rep-1", apps, nil, now)
		assert.Contains(t, got.Recommendations, recReviewCriteria)
	})

	t.Run("low approval rate flags strict rules", func(t *testing.T) {
		apps := []Application{
			appWithScore(20, ApplicationStatusApproved),
			appWithScore(25, ApplicationStatusRejected),
			appWithScore(30, ApplicationStatusRejected),
			appWithScore(35, ApplicationStatusRejected),
		}

		got := BuildRiskReport("rep-1", apps, nil, now)
		assert.Contains(t, got.Recommendations, recRulesTooStrict)
	})

	t.Run("high risk volume triggers enhanced diligence", func(t *testing.T) {
		apps := make([]Application, 0, 21)
		for i := 0; i < 21; i++ {
			apps = append(apps, appWithScore(55, ApplicationStatusApproved))
		}

		got := BuildRiskReport("rep-1", apps, nil, now)
		assert.Contains(t, got.Recommendations, recEnhancedDiligence)
	})

	t.Run("recommendations keep their check order", func(t *testing.T) {
		// Elevated average AND low approval rate at once
		apps := []Application{
			appWithScore(80, ApplicationStatusRejected),
			appWithScore(85, ApplicationStatusRejected),
			appWithScore(90, ApplicationStatusRejected),
		}

		got := BuildRiskReport("rep-1", apps, nil, now)
		require.Len(t, got.Recommendations, 2)
		assert.Equal(t, recStricterRules, got.Recommendations[0])
		assert.Equal(t, recRulesTooStrict, got.Recommendations[1])
	})
}

func TestBuildRiskReportEmptyBook(t *testing.T) {
	got := BuildRiskReport("rep-1", nil, nil, time.Now())

	assert.Equal(t, 0, got.TotalApplications)
	assert.Equal(t, 0.0, got.AverageRiskScore)
	assert.Equal(t, "0.0%", got.ApprovalRate)
	// A zero approval rate reads as "too strict" even on an empty book;
	// the thresholds make no special case for zero applications.
	assert.Equal(t, []string{recRulesTooStrict}, got.Recommendations)
}
