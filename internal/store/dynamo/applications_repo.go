package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aurorains/insurance-platform/internal/core"
)

type RiskComponentsItem struct {
	AgeRisk          int `dynamodbav:"age_risk"`
	HealthRisk       int `dynamodbav:"health_risk"`
	LifestyleRisk    int `dynamodbav:"lifestyle_risk"`
	ClaimHistoryRisk int `dynamodbav:"claim_history_risk"`
}

func (i RiskComponentsItem) ToCore() core.RiskComponents {
	return core.RiskComponents(i)
}

type PremiumItem struct {
	BasePremium        float64 `dynamodbav:"base_premium"`
	PremiumFactor      float64 `dynamodbav:"premium_factor"`
	CoverageMultiplier float64 `dynamodbav:"coverage_multiplier"`
	RiskAdjustment     float64 `dynamodbav:"risk_adjustment"`
	CoverageAdjustment float64 `dynamodbav:"coverage_adjustment"`
	FinalPremium       float64 `dynamodbav:"final_premium"`
}

func (i PremiumItem) ToCore() core.PremiumBreakdown {
	return core.PremiumBreakdown(i)
}

type ApplicationItem struct {
	ID          string `dynamodbav:"id"`
	CustomerID  string `dynamodbav:"customer_id"`
	ProductID   string `dynamodbav:"product_id"`
	ProductSlug string `dynamodbav:"product_slug"`
	ProductLine string `dynamodbav:"product_line"`
	Coverage    string `dynamodbav:"coverage"`

	MedicalHistory        string `dynamodbav:"medical_history,omitempty"`
	PreExistingConditions string `dynamodbav:"pre_existing_conditions,omitempty"`
	CurrentMedications    string `dynamodbav:"current_medications,omitempty"`
	VehicleDetails        string `dynamodbav:"vehicle_details,omitempty"`
	DrivingHistory        string `dynamodbav:"driving_history,omitempty"`
	PreviousClaims        string `dynamodbav:"previous_claims,omitempty"`

	RiskScore      int                `dynamodbav:"risk_score"`
	RiskComponents RiskComponentsItem `dynamodbav:"risk_components"`
	Premium        PremiumItem        `dynamodbav:"premium"`

	Status    string `dynamodbav:"status"`
	Assessed  bool   `dynamodbav:"assessed"`
	PolicyID  string `dynamodbav:"policy_id,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func (i ApplicationItem) ToCore() core.Application {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)
	return core.Application{
		ID:          i.ID,
		CustomerID:  i.CustomerID,
		ProductID:   i.ProductID,
		ProductSlug: i.ProductSlug,
		ProductLine: core.ProductLine(i.ProductLine),
		Coverage:    core.CoverageLevel(i.Coverage),

		MedicalHistory:        i.MedicalHistory,
		PreExistingConditions: i.PreExistingConditions,
		CurrentMedications:    i.CurrentMedications,
		VehicleDetails:        i.VehicleDetails,
		DrivingHistory:        i.DrivingHistory,
		PreviousClaims:        i.PreviousClaims,

		RiskScore:      i.RiskScore,
		RiskComponents: i.RiskComponents.ToCore(),
		Premium:        i.Premium.ToCore(),

		Status:    core.ApplicationStatus(i.Status),
		Assessed:  i.Assessed,
		PolicyID:  i.PolicyID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func applicationItemFromCore(app core.Application) ApplicationItem {
	return ApplicationItem{
		ID:          app.ID,
		CustomerID:  app.CustomerID,
		ProductID:   app.ProductID,
		ProductSlug: app.ProductSlug,
		ProductLine: string(app.ProductLine),
		Coverage:    string(app.Coverage),

		MedicalHistory:        app.MedicalHistory,
		PreExistingConditions: app.PreExistingConditions,
		CurrentMedications:    app.CurrentMedications,
		VehicleDetails:        app.VehicleDetails,
		DrivingHistory:        app.DrivingHistory,
		PreviousClaims:        app.PreviousClaims,

		RiskScore:      app.RiskScore,
		RiskComponents: RiskComponentsItem(app.RiskComponents),
		Premium:        PremiumItem(app.Premium),

		Status:    string(app.Status),
		Assessed:  app.Assessed,
		PolicyID:  app.PolicyID,
		CreatedAt: app.CreatedAt.Format(time.RFC3339),
		UpdatedAt: app.UpdatedAt.Format(time.RFC3339),
	}
}

type ApplicationRepo struct {
	client *dynamodb.Client
}

func NewApplicationRepo(client *dynamodb.Client) *ApplicationRepo {
	return &ApplicationRepo{client: client}
}

func (r *ApplicationRepo) Create(ctx context.Context, app core.Application) error {
	return putNew(ctx, r.client, TableApplications, applicationItemFromCore(app), core.ErrConflict)
}

func (r *ApplicationRepo) Get(ctx context.Context, id string) (core.Application, error) {
	item, err := getByID[ApplicationItem](ctx, r.client, TableApplications, id, core.ErrApplicationNotFound)
	if err != nil {
		return core.Application{}, err
	}
	return item.ToCore(), nil
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id string, status core.ApplicationStatus, updatedAt time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(TableApplications),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression:    aws.String("SET #status = :status, updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: updatedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return core.ErrApplicationNotFound
		}
		return fmt.Errorf("applications.updateItem: %w", err)
	}
	return nil
}

func (r *ApplicationRepo) MarkAssessed(ctx context.Context, id string, updatedAt time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(TableApplications),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression:    aws.String("SET assessed = :assessed, updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":assessed":   &types.AttributeValueMemberBOOL{Value: true},
			":updated_at": &types.AttributeValueMemberS{Value: updatedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return core.ErrApplicationNotFound
		}
		return fmt.Errorf("applications.updateItem: %w", err)
	}
	return nil
}

func (r *ApplicationRepo) SetPolicyID(ctx context.Context, id, policyID string, updatedAt time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(TableApplications),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression:    aws.String("SET policy_id = :policy_id, updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":policy_id":  &types.AttributeValueMemberS{Value: policyID},
			":updated_at": &types.AttributeValueMemberS{Value: updatedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return core.ErrApplicationNotFound
		}
		return fmt.Errorf("applications.updateItem: %w", err)
	}
	return nil
}

func (r *ApplicationRepo) List(ctx context.Context, filter core.ApplicationFilter, limit, offset int) ([]core.Application, error) {
	var items []ApplicationItem
	var err error

	// Prefer a GSI over a scan when the filter pins one down.
	switch {
	case filter.CustomerID != "":
		items, err = queryByAttr[ApplicationItem](ctx, r.client, TableApplications, "customer_id", filter.CustomerID, 0)
		if err == nil && filter.Status != "" {
			kept := items[:0]
			for _, item := range items {
				if item.Status == string(filter.Status) {
					kept = append(kept, item)
				}
			}
			items = kept
		}
	case filter.Status != "":
		items, err = queryByAttr[ApplicationItem](ctx, r.client, TableApplications, "status", string(filter.Status), 0)
	default:
		items, err = scanAll[ApplicationItem](ctx, r.client, TableApplications)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt > items[b].CreatedAt
	})
	items = pageSlice(items, limit, offset)

	apps := make([]core.Application, len(items))
	for i, item := range items {
		apps[i] = item.ToCore()
	}
	return apps, nil
}

// FindAwaitingAssessment returns pending applications without a risk
// assessment, oldest first. The status GSI cannot express the assessed
// flag, so the query fetches all pending items and filters here.
func (r *ApplicationRepo) FindAwaitingAssessment(ctx context.Context, limit int) ([]core.Application, error) {
	return r.findUnfinished(ctx, core.ApplicationStatusPending, limit, func(item ApplicationItem) bool {
		return !item.Assessed
	})
}

// FindAwaitingIssuance returns approved applications without a policy, oldest first.
func (r *ApplicationRepo) FindAwaitingIssuance(ctx context.Context, limit int) ([]core.Application, error) {
	return r.findUnfinished(ctx, core.ApplicationStatusApproved, limit, func(item ApplicationItem) bool {
		return item.PolicyID == ""
	})
}

func (r *ApplicationRepo) findUnfinished(ctx context.Context, status core.ApplicationStatus, limit int, keep func(ApplicationItem) bool) ([]core.Application, error) {
	items, err := queryByAttr[ApplicationItem](ctx, r.client, TableApplications, "status", string(status), 0)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if keep(item) {
			kept = append(kept, item)
		}
	}

	// RFC3339 sorts lexicographically.
	sort.Slice(kept, func(a, b int) bool {
		return kept[a].CreatedAt < kept[b].CreatedAt
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	apps := make([]core.Application, len(kept))
	for i, item := range kept {
		apps[i] = item.ToCore()
	}
	return apps, nil
}

func (r *ApplicationRepo) FindByStatus(ctx context.Context, status core.ApplicationStatus, limit int) ([]core.Application, error) {
	items, err := queryByAttr[ApplicationItem](ctx, r.client, TableApplications, "status", string(status), limit)
	if err != nil {
		return nil, err
	}

	apps := make([]core.Application, len(items))
	for i, item := range items {
		apps[i] = item.ToCore()
	}
	return apps, nil
}
