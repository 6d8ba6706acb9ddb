package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aurorains/insurance-platform/internal/core"
)

type PaymentItem struct {
	ID          string  `dynamodbav:"id"`
	PolicyID    string  `dynamodbav:"policy_id"`
	Amount      float64 `dynamodbav:"amount"`
	TaxAmount   float64 `dynamodbav:"tax_amount"`
	FinalAmount float64 `dynamodbav:"final_amount"`
	Status      string  `dynamodbav:"status"`
	DueDate     string  `dynamodbav:"due_date"`
	CreatedAt   string  `dynamodbav:"created_at"`
	PaidAt      *string `dynamodbav:"paid_at,omitempty"`
}

func (i PaymentItem) ToCore() core.PremiumPayment {
	dueDate, _ := time.Parse(time.RFC3339, i.DueDate)
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	p := core.PremiumPayment{
		ID:          i.ID,
		PolicyID:    i.PolicyID,
		Amount:      i.Amount,
		TaxAmount:   i.TaxAmount,
		FinalAmount: i.FinalAmount,
		Status:      core.PaymentStatus(i.Status),
		DueDate:     dueDate,
		CreatedAt:   createdAt,
	}
	if i.PaidAt != nil {
		paidAt, _ := time.Parse(time.RFC3339, *i.PaidAt)
		p.PaidAt = &paidAt
	}
	return p
}

func paymentItemFromCore(p core.PremiumPayment) PaymentItem {
	item := PaymentItem{
		ID:          p.ID,
		PolicyID:    p.PolicyID,
		Amount:      p.Amount,
		TaxAmount:   p.TaxAmount,
		FinalAmount: p.FinalAmount,
		Status:      string(p.Status),
		DueDate:     p.DueDate.Format(time.RFC3339),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.PaidAt != nil {
		paidAt := p.PaidAt.Format(time.RFC3339)
		item.PaidAt = &paidAt
	}
	return item
}

type PaymentRepo struct {
	client *dynamodb.Client
}

func NewPaymentRepo(client *dynamodb.Client) *PaymentRepo {
	return &PaymentRepo{client: client}
}

func (r *PaymentRepo) Create(ctx context.Context, p core.PremiumPayment) error {
	return putNew(ctx, r.client, TablePayments, paymentItemFromCore(p), core.ErrConflict)
}

func (r *PaymentRepo) Get(ctx context.Context, id string) (core.PremiumPayment, error) {
	item, err := getByID[PaymentItem](ctx, r.client, TablePayments, id, core.ErrPaymentNotFound)
	if err != nil {
		return core.PremiumPayment{}, err
	}
	return item.ToCore(), nil
}

func (r *PaymentRepo) ListByPolicyID(ctx context.Context, policyID string) ([]core.PremiumPayment, error) {
	items, err := queryByAttr[PaymentItem](ctx, r.client, TablePayments, "policy_id", policyID, 0)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(a, b int) bool { return items[a].CreatedAt < items[b].CreatedAt })

	payments := make([]core.PremiumPayment, len(items))
	for i, item := range items {
		payments[i] = item.ToCore()
	}
	return payments, nil
}

func (r *PaymentRepo) Update(ctx context.Context, p core.PremiumPayment) error {
	av, err := attributevalue.MarshalMap(paymentItemFromCore(p))
	if err != nil {
		return fmt.Errorf("payments.marshal: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(TablePayments),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return core.ErrPaymentNotFound
		}
		return fmt.Errorf("payments.putItem: %w", err)
	}
	return nil
}
