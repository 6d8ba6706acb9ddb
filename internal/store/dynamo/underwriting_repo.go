package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aurorains/insurance-platform/internal/core"
)

type LimitsItem struct {
	Tier          string  `dynamodbav:"tier"`
	PremiumFactor float64 `dynamodbav:"premium_factor"`
}

type AssessmentItem struct {
	ID            string             `dynamodbav:"id"`
	ApplicationID string             `dynamodbav:"application_id"`
	RiskScore     int                `dynamodbav:"risk_score"`
	Components    RiskComponentsItem `dynamodbav:"components"`
	Result        string             `dynamodbav:"result"`
	Reason        string             `dynamodbav:"reason"`
	RulesApplied  []string           `dynamodbav:"rules_applied"`
	Exclusions    []string           `dynamodbav:"exclusions,omitempty"`
	Limits        *LimitsItem        `dynamodbav:"limits,omitempty"`
	AssessedBy    string             `dynamodbav:"assessed_by"`
	Status        string             `dynamodbav:"status"`
	AssessedAt    string             `dynamodbav:"assessed_at"`
}

func (i AssessmentItem) ToCore() core.RiskAssessment {
	assessedAt, _ := time.Parse(time.RFC3339, i.AssessedAt)
	a := core.RiskAssessment{
		ID:            i.ID,
		ApplicationID: i.ApplicationID,
		RiskScore:     i.RiskScore,
		Components:    i.Components.ToCore(),
		Result:        core.AssessmentResult(i.Result),
		Reason:        i.Reason,
		RulesApplied:  i.RulesApplied,
		Exclusions:    i.Exclusions,
		AssessedBy:    i.AssessedBy,
		Status:        i.Status,
		AssessedAt:    assessedAt,
	}
	if i.Limits != nil {
		a.Limits = &core.CoverageLimits{
			Tier:          core.CoverageTier(i.Limits.Tier),
			PremiumFactor: i.Limits.PremiumFactor,
		}
	}
	return a
}

func assessmentItemFromCore(a core.RiskAssessment) AssessmentItem {
	item := AssessmentItem{
		ID:            a.ID,
		ApplicationID: a.ApplicationID,
		RiskScore:     a.RiskScore,
		Components:    RiskComponentsItem(a.Components),
		Result:        string(a.Result),
		Reason:        a.Reason,
		RulesApplied:  a.RulesApplied,
		Exclusions:    a.Exclusions,
		AssessedBy:    a.AssessedBy,
		Status:        a.Status,
		AssessedAt:    a.AssessedAt.Format(time.RFC3339),
	}
	if a.Limits != nil {
		item.Limits = &LimitsItem{
			Tier:          string(a.Limits.Tier),
			PremiumFactor: a.Limits.PremiumFactor,
		}
	}
	return item
}

type AssessmentRepo struct {
	client *dynamodb.Client
}

func NewAssessmentRepo(client *dynamodb.Client) *AssessmentRepo {
	return &AssessmentRepo{client: client}
}

func (r *AssessmentRepo) Create(ctx context.Context, a core.RiskAssessment) error {
	// One assessment per application; checked against the GSI since
	// DynamoDB cannot enforce uniqueness on a non-key attribute.
	_, err := r.GetByApplicationID(ctx, a.ApplicationID)
	if err == nil {
		return core.ErrAssessmentExists
	}
	if !errors.Is(err, core.ErrAssessmentNotFound) {
		return err
	}

	return putNew(ctx, r.client, TableAssessments, assessmentItemFromCore(a), core.ErrAssessmentExists)
}

func (r *AssessmentRepo) Get(ctx context.Context, id string) (core.RiskAssessment, error) {
	item, err := getByID[AssessmentItem](ctx, r.client, TableAssessments, id, core.ErrAssessmentNotFound)
	if err != nil {
		return core.RiskAssessment{}, err
	}
	return item.ToCore(), nil
}

func (r *AssessmentRepo) GetByApplicationID(ctx context.Context, appID string) (core.RiskAssessment, error) {
	item, err := queryOneByAttr[AssessmentItem](ctx, r.client, TableAssessments, "application_id", appID, core.ErrAssessmentNotFound)
	if err != nil {
		return core.RiskAssessment{}, err
	}
	return item.ToCore(), nil
}

func (r *AssessmentRepo) FindByResult(ctx context.Context, result core.AssessmentResult, limit int) ([]core.RiskAssessment, error) {
	items, err := queryByAttr[AssessmentItem](ctx, r.client, TableAssessments, "result", string(result), limit)
	if err != nil {
		return nil, err
	}
	return assessmentsToCore(items), nil
}

func (r *AssessmentRepo) All(ctx context.Context) ([]core.RiskAssessment, error) {
	items, err := scanAll[AssessmentItem](ctx, r.client, TableAssessments)
	if err != nil {
		return nil, err
	}
	return assessmentsToCore(items), nil
}

func assessmentsToCore(items []AssessmentItem) []core.RiskAssessment {
	assessments := make([]core.RiskAssessment, len(items))
	for i, item := range items {
		assessments[i] = item.ToCore()
	}
	return assessments
}

type DecisionItem struct {
	ID             string `dynamodbav:"id"`
	ApplicationID  string `dynamodbav:"application_id"`
	AssessmentID   string `dynamodbav:"assessment_id"`
	Status         string `dynamodbav:"status"`
	Reason         string `dynamodbav:"reason"`
	ReviewRequired bool   `dynamodbav:"review_required"`
	DecidedBy      string `dynamodbav:"decided_by"`
	DecidedAt      string `dynamodbav:"decided_at"`
}

func (i DecisionItem) ToCore() core.UnderwritingDecision {
	decidedAt, _ := time.Parse(time.RFC3339, i.DecidedAt)
	return core.UnderwritingDecision{
		ID:             i.ID,
		ApplicationID:  i.ApplicationID,
		AssessmentID:   i.AssessmentID,
		Status:         core.DecisionStatus(i.Status),
		Reason:         i.Reason,
		ReviewRequired: i.ReviewRequired,
		DecidedBy:      i.DecidedBy,
		DecidedAt:      decidedAt,
	}
}

func decisionItemFromCore(d core.UnderwritingDecision) DecisionItem {
	return DecisionItem{
		ID:             d.ID,
		ApplicationID:  d.ApplicationID,
		AssessmentID:   d.AssessmentID,
		Status:         string(d.Status),
		Reason:         d.Reason,
		ReviewRequired: d.ReviewRequired,
		DecidedBy:      d.DecidedBy,
		DecidedAt:      d.DecidedAt.Format(time.RFC3339),
	}
}

type DecisionRepo struct {
	client *dynamodb.Client
}

func NewDecisionRepo(client *dynamodb.Client) *DecisionRepo {
	return &DecisionRepo{client: client}
}

func (r *DecisionRepo) Create(ctx context.Context, d core.UnderwritingDecision) error {
	_, err := r.GetByApplicationID(ctx, d.ApplicationID)
	if err == nil {
		return core.ErrDecisionExists
	}
	if !errors.Is(err, core.ErrDecisionNotFound) {
		return err
	}

	return putNew(ctx, r.client, TableDecisions, decisionItemFromCore(d), core.ErrDecisionExists)
}

func (r *DecisionRepo) Get(ctx context.Context, id string) (core.UnderwritingDecision, error) {
	item, err := getByID[DecisionItem](ctx, r.client, TableDecisions, id, core.ErrDecisionNotFound)
	if err != nil {
		return core.UnderwritingDecision{}, err
	}
	return item.ToCore(), nil
}

func (r *DecisionRepo) GetByApplicationID(ctx context.Context, appID string) (core.UnderwritingDecision, error) {
	item, err := queryOneByAttr[DecisionItem](ctx, r.client, TableDecisions, "application_id", appID, core.ErrDecisionNotFound)
	if err != nil {
		return core.UnderwritingDecision{}, err
	}
	return item.ToCore(), nil
}
