package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aurorains/insurance-platform/internal/core"
)

type PolicyItem struct {
	ID             string      `dynamodbav:"id"`
	Number         string      `dynamodbav:"number"`
	ApplicationID  string      `dynamodbav:"application_id"`
	CustomerID     string      `dynamodbav:"customer_id"`
	ProductSlug    string      `dynamodbav:"product_slug"`
	CoverageAmount int64       `dynamodbav:"coverage_amount"`
	Premium        PremiumItem `dynamodbav:"premium"`
	Status         string      `dynamodbav:"status"`
	StartDate      string      `dynamodbav:"start_date"`
	EndDate        string      `dynamodbav:"end_date"`
	RenewalDate    string      `dynamodbav:"renewal_date"`
	IssuedAt       string      `dynamodbav:"issued_at"`
}

func (i PolicyItem) ToCore() core.Policy {
	startDate, _ := time.Parse(time.RFC3339, i.StartDate)
	endDate, _ := time.Parse(time.RFC3339, i.EndDate)
	renewalDate, _ := time.Parse(time.RFC3339, i.RenewalDate)
	issuedAt, _ := time.Parse(time.RFC3339, i.IssuedAt)
	return core.Policy{
		ID:             i.ID,
		Number:         i.Number,
		ApplicationID:  i.ApplicationID,
		CustomerID:     i.CustomerID,
		ProductSlug:    i.ProductSlug,
		CoverageAmount: i.CoverageAmount,
		Premium:        i.Premium.ToCore(),
		Status:         core.PolicyStatus(i.Status),
		StartDate:      startDate,
		EndDate:        endDate,
		RenewalDate:    renewalDate,
		IssuedAt:       issuedAt,
	}
}

func policyItemFromCore(p core.Policy) PolicyItem {
	return PolicyItem{
		ID:             p.ID,
		Number:         p.Number,
		ApplicationID:  p.ApplicationID,
		CustomerID:     p.CustomerID,
		ProductSlug:    p.ProductSlug,
		CoverageAmount: p.CoverageAmount,
		Premium:        PremiumItem(p.Premium),
		Status:         string(p.Status),
		StartDate:      p.StartDate.Format(time.RFC3339),
		EndDate:        p.EndDate.Format(time.RFC3339),
		RenewalDate:    p.RenewalDate.Format(time.RFC3339),
		IssuedAt:       p.IssuedAt.Format(time.RFC3339),
	}
}

type PolicyRepo struct {
	client *dynamodb.Client
}

func NewPolicyRepo(client *dynamodb.Client) *PolicyRepo {
	return &PolicyRepo{client: client}
}

func (r *PolicyRepo) Create(ctx context.Context, p core.Policy) error {
	// One policy per application.
	_, err := r.GetByApplicationID(ctx, p.ApplicationID)
	if err == nil {
		return core.ErrPolicyExists
	}
	if !errors.Is(err, core.ErrPolicyNotFound) {
		return err
	}

	return putNew(ctx, r.client, TablePolicies, policyItemFromCore(p), core.ErrPolicyExists)
}

func (r *PolicyRepo) Get(ctx context.Context, id string) (core.Policy, error) {
	item, err := getByID[PolicyItem](ctx, r.client, TablePolicies, id, core.ErrPolicyNotFound)
	if err != nil {
		return core.Policy{}, err
	}
	return item.ToCore(), nil
}

func (r *PolicyRepo) GetByNumber(ctx context.Context, number string) (core.Policy, error) {
	item, err := queryOneByAttr[PolicyItem](ctx, r.client, TablePolicies, "number", number, core.ErrPolicyNotFound)
	if err != nil {
		return core.Policy{}, err
	}
	return item.ToCore(), nil
}

func (r *PolicyRepo) GetByApplicationID(ctx context.Context, appID string) (core.Policy, error) {
	item, err := queryOneByAttr[PolicyItem](ctx, r.client, TablePolicies, "application_id", appID, core.ErrPolicyNotFound)
	if err != nil {
		return core.Policy{}, err
	}
	return item.ToCore(), nil
}

func (r *PolicyRepo) List(ctx context.Context, filter core.PolicyFilter, limit, offset int) ([]core.Policy, int64, error) {
	var items []PolicyItem
	var err error

	if filter.CustomerID != "" {
		items, err = queryByAttr[PolicyItem](ctx, r.client, TablePolicies, "customer_id", filter.CustomerID, 0)
	} else {
		items, err = scanAll[PolicyItem](ctx, r.client, TablePolicies)
	}
	if err != nil {
		return nil, 0, err
	}

	if filter.Status != "" {
		kept := items[:0]
		for _, item := range items {
			if item.Status == string(filter.Status) {
				kept = append(kept, item)
			}
		}
		items = kept
	}

	total := int64(len(items))
	sort.Slice(items, func(a, b int) bool {
		return items[a].IssuedAt > items[b].IssuedAt
	})
	items = pageSlice(items, limit, offset)

	policies := make([]core.Policy, len(items))
	for i, item := range items {
		policies[i] = item.ToCore()
	}
	return policies, total, nil
}

func (r *PolicyRepo) All(ctx context.Context) ([]core.Policy, error) {
	items, err := scanAll[PolicyItem](ctx, r.client, TablePolicies)
	if err != nil {
		return nil, err
	}
	policies := make([]core.Policy, len(items))
	for i, item := range items {
		policies[i] = item.ToCore()
	}
	return policies, nil
}

// NextPolicyNumber returns the next POL-YYYY-NNNNNN number using an atomic
// per-year counter.
func (r *PolicyRepo) NextPolicyNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	counterName := fmt.Sprintf("policy_%d", year)

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(TableCounters),
		Key: map[string]types.AttributeValue{
			"counter_name": &types.AttributeValueMemberS{Value: counterName},
		},
		UpdateExpression: aws.String("SET counter_value = if_not_exists(counter_value, :zero) + :inc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return "", fmt.Errorf("counters.updateItem: %w", err)
	}

	raw, ok := out.Attributes["counter_value"].(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("counters.updateItem: unexpected counter_value type")
	}
	num, err := strconv.Atoi(raw.Value)
	if err != nil {
		return "", fmt.Errorf("counters.parse: %w", err)
	}
	return fmt.Sprintf("POL-%d-%06d", year, num), nil
}
