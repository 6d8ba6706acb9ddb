package core

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RiskTier buckets used by the report histogram. Boundaries line up with the
// rule table thresholds.
const (
	RiskTierLow      = "low"      // score < 30
	RiskTierModerate = "moderate" // 30-49
	RiskTierHigh     = "high"     // 50-69
	RiskTierSevere   = "severe"   // >= 70
)

// RiskReport is an aggregate snapshot over the application and policy books
// at generation time. Purely derived; regenerating from the same inputs
// yields the same report.
type RiskReport struct {
	ID                string         `json:"id"`
	GeneratedAt       time.Time      `json:"generated_at"`
	TotalApplications int            `json:"total_applications"`
	TotalPolicies     int            `json:"total_policies"`
	ApprovedCount     int            `json:"approved_count"`
	RejectedCount     int            `json:"rejected_count"`
	PendingCount      int            `json:"pending_count"`
	AverageRiskScore  float64        `json:"average_risk_score"`
	ApprovalRate      string         `json:"approval_rate"` // e.g. "62.5%"
	RiskTiers         map[string]int `json:"risk_tiers"`
	Recommendations   []string       `json:"recommendations"`
}

type ReportRepo interface {
	Create(ctx context.Context, r RiskReport) error
	Get(ctx context.Context, id string) (RiskReport, error)
	List(ctx context.Context, limit int) ([]RiskReport, error)
}

// Recommendation thresholds. Checks run in this order and multiple
// recommendations may co-occur.
const (
	recAvgRiskThreshold      = 60
	recApprovalHighThreshold = 80.0
	recHighRiskAppsThreshold = 20
	recApprovalLowThreshold  = 30.0
)

const (
	recStricterRules     = "Average risk score is elevated; consider stricter underwriting rules"
	recReviewCriteria    = "Approval rate is high; review approval criteria for adverse selection"
	recEnhancedDiligence = "High volume of high-risk applications; apply enhanced due diligence"
	recRulesTooStrict    = "Approval rate is low; underwriting rules may be too strict"
	recWithinRange       = "Portfolio risk indicators are within the expected range"
)

// BuildRiskReport aggregates the given applications and policies into a
// report snapshot.
func BuildRiskReport(id string, apps []Application, policies []Policy, now time.Time) RiskReport {
	report := RiskReport{
		ID:                id,
		GeneratedAt:       now,
		TotalApplications: len(apps),
		TotalPolicies:     len(policies),
		RiskTiers: map[string]int{
			RiskTierLow:      0,
			RiskTierModerate: 0,
			RiskTierHigh:     0,
			RiskTierSevere:   0,
		},
	}

	scoreSum := 0
	highRiskApps := 0
	for _, app := range apps {
		scoreSum += app.RiskScore
		report.RiskTiers[riskTier(app.RiskScore)]++
		if app.RiskScore >= 50 {
			highRiskApps++
		}
		switch app.Status {
		case ApplicationStatusApproved:
			report.ApprovedCount++
		case ApplicationStatusRejected:
			report.RejectedCount++
		default:
			report.PendingCount++
		}
	}

	approvalRate := 0.0
	if len(apps) > 0 {
		report.AverageRiskScore = math.Round(float64(scoreSum)/float64(len(apps))*10) / 10
		approvalRate = float64(report.ApprovedCount) / float64(len(apps)) * 100
	}
	report.ApprovalRate = fmt.Sprintf("%.1f%%", approvalRate)

	// Rule-based recommendations; order matters and several can fire at
	// once.
	if report.AverageRiskScore > recAvgRiskThreshold {
		report.Recommendations = append(report.Recommendations, recStricterRules)
	}
	if approvalRate > recApprovalHighThreshold {
		report.Recommendations = append(report.Recommendations, recReviewCriteria)
	}
	if highRiskApps > recHighRiskAppsThreshold {
		report.Recommendations = append(report.Recommendations, recEnhancedDiligence)
	}
	if approvalRate < recApprovalLowThreshold {
		report.Recommendations = append(report.Recommendations, recRulesTooStrict)
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = []string{recWithinRange}
	}

	return report
}

func riskTier(score int) string {
	switch {
	case score < 30:
		return RiskTierLow
	case score < 50:
		return RiskTierModerate
	case score < 70:
		return RiskTierHigh
	default:
		return RiskTierSevere
	}
}

var ErrReportNotFound = fmt.Errorf("%w: risk report not found", ErrNotFound)
