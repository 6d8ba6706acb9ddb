package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Table names
const (
	TableCustomers    = "insurance_customers"
	TableProducts     = "insurance_products"
	TableApplications = "insurance_applications"
	TableAssessments  = "insurance_risk_assessments"
	TableDecisions    = "insurance_uw_decisions"
	TablePolicies     = "insurance_policies"
	TablePayments     = "insurance_payments"
	TableReports      = "insurance_reports"
	TableCredentials  = "insurance_credentials"
	TableCounters     = "insurance_counters" // For policy number generation
)

// GSI names follow the "<attribute>-index" convention; each index hashes on a
// single string attribute with full projection.
const (
	GSICustomersEmail       = "email-index"
	GSIProductsSlug         = "slug-index"
	GSIApplicationsStatus   = "status-index"
	GSIApplicationsCustomer = "customer_id-index"
	GSIAssessmentsAppID     = "application_id-index"
	GSIAssessmentsResult    = "result-index"
	GSIDecisionsAppID       = "application_id-index"
	GSIPoliciesNumber       = "number-index"
	GSIPoliciesAppID        = "application_id-index"
	GSIPoliciesCustomer     = "customer_id-index"
	GSIPaymentsPolicyID     = "policy_id-index"
	GSICredentialsEmail     = "email-index"
)

// tableSpec describes a table keyed on "id" plus zero or more single-attribute
// GSIs. The counters table is the one exception and is created separately.
type tableSpec struct {
	name     string
	gsiAttrs []string
}

var tableSpecs = []tableSpec{
	{TableCustomers, []string{"email"}},
	{TableProducts, []string{"slug"}},
	{TableApplications, []string{"status", "customer_id"}},
	{TableAssessments, []string{"application_id", "result"}},
	{TableDecisions, []string{"application_id"}},
	{TablePolicies, []string{"number", "application_id", "customer_id"}},
	{TablePayments, []string{"policy_id"}},
	{TableReports, nil},
	{TableCredentials, []string{"email"}},
}

// EnsureTables creates all required tables if they don't exist.
func EnsureTables(ctx context.Context, client *dynamodb.Client, log *slog.Logger) error {
	for _, spec := range tableSpecs {
		if err := ensureTable(ctx, client, log, spec.name, func(ctx context.Context) error {
			return createEntityTable(ctx, client, spec)
		}); err != nil {
			return err
		}
	}
	return ensureTable(ctx, client, log, TableCounters, func(ctx context.Context) error {
		return createCountersTable(ctx, client)
	})
}

func ensureTable(ctx context.Context, client *dynamodb.Client, log *slog.Logger, name string, create func(context.Context) error) error {
	exists, err := tableExists(ctx, client, name)
	if err != nil {
		return fmt.Errorf("check table %s: %w", name, err)
	}
	if exists {
		log.Info("table exists", "table", name)
		return nil
	}

	log.Info("creating table", "table", name)
	if err := create(ctx); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	log.Info("table created", "table", name)
	return nil
}

func tableExists(ctx context.Context, client *dynamodb.Client, name string) (bool, error) {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func createEntityTable(ctx context.Context, client *dynamodb.Client, spec tableSpec) error {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
	}
	var gsis []types.GlobalSecondaryIndex
	for _, attr := range spec.gsiAttrs {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(attr),
			AttributeType: types.ScalarAttributeTypeS,
		})
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(attr + "-index"),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(attr), KeyType: types.KeyTypeHash},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(spec.name),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions:   attrs,
		GlobalSecondaryIndexes: gsis,
		BillingMode:            types.BillingModePayPerRequest,
	})
	return err
}

func createCountersTable(ctx context.Context, client *dynamodb.Client) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(TableCounters),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("counter_name"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("counter_name"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}
