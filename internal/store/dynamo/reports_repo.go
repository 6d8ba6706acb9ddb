package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aurorains/insurance-platform/internal/core"
)

type ReportItem struct {
	ID                string         `dynamodbav:"id"`
	GeneratedAt       string         `dynamodbav:"generated_at"`
	TotalApplications int            `dynamodbav:"total_applications"`
	TotalPolicies     int            `dynamodbav:"total_policies"`
	ApprovedCount     int            `dynamodbav:"approved_count"`
	RejectedCount     int            `dynamodbav:"rejected_count"`
	PendingCount      int            `dynamodbav:"pending_count"`
	AverageRiskScore  float64        `dynamodbav:"average_risk_score"`
	ApprovalRate      string         `dynamodbav:"approval_rate"`
	RiskTiers         map[string]int `dynamodbav:"risk_tiers"`
	Recommendations   []string       `dynamodbav:"recommendations"`
}

func (i ReportItem) ToCore() core.RiskReport {
	generatedAt, _ := time.Parse(time.RFC3339, i.GeneratedAt)
	return core.RiskReport{
		ID:                i.ID,
		GeneratedAt:       generatedAt,
		TotalApplications: i.TotalApplications,
		TotalPolicies:     i.TotalPolicies,
		ApprovedCount:     i.ApprovedCount,
		RejectedCount:     i.RejectedCount,
		PendingCount:      i.PendingCount,
		AverageRiskScore:  i.AverageRiskScore,
		ApprovalRate:      i.ApprovalRate,
		RiskTiers:         i.RiskTiers,
		Recommendations:   i.Recommendations,
	}
}

func reportItemFromCore(r core.RiskReport) ReportItem {
	return ReportItem{
		ID:                r.ID,
		GeneratedAt:       r.GeneratedAt.Format(time.RFC3339),
		TotalApplications: r.TotalApplications,
		TotalPolicies:     r.TotalPolicies,
		ApprovedCount:     r.ApprovedCount,
		RejectedCount:     r.RejectedCount,
		PendingCount:      r.PendingCount,
		AverageRiskScore:  r.AverageRiskScore,
		ApprovalRate:      r.ApprovalRate,
		RiskTiers:         r.RiskTiers,
		Recommendations:   r.Recommendations,
	}
}

type ReportRepo struct {
	client *dynamodb.Client
}

func NewReportRepo(client *dynamodb.Client) *ReportRepo {
	return &ReportRepo{client: client}
}

func (r *ReportRepo) Create(ctx context.Context, report core.RiskReport) error {
	return putNew(ctx, r.client, TableReports, reportItemFromCore(report), core.ErrConflict)
}

func (r *ReportRepo) Get(ctx context.Context, id string) (core.RiskReport, error) {
	item, err := getByID[ReportItem](ctx, r.client, TableReports, id, core.ErrReportNotFound)
	if err != nil {
		return core.RiskReport{}, err
	}
	return item.ToCore(), nil
}

func (r *ReportRepo) List(ctx context.Context, limit int) ([]core.RiskReport, error) {
	items, err := scanAll[ReportItem](ctx, r.client, TableReports)
	if err != nil {
		return nil, err
	}

	// Newest first; RFC 3339 strings sort chronologically.
	sort.Slice(items, func(a, b int) bool {
		return items[a].GeneratedAt > items[b].GeneratedAt
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	reports := make([]core.RiskReport, len(items))
	for i, item := range items {
		reports[i] = item.ToCore()
	}
	return reports, nil
}
