package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := ensureCustomersIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure customers indexes: %w", err)
	}
	if err := ensureProductsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure products indexes: %w", err)
	}
	if err := ensureApplicationsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure applications indexes: %w", err)
	}
	if err := ensureAssessmentsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure risk_assessments indexes: %w", err)
	}
	if err := ensureDecisionsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure underwriting_decisions indexes: %w", err)
	}
	if err := ensurePoliciesIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure policies indexes: %w", err)
	}
	if err := ensurePaymentsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure premium_payments indexes: %w", err)
	}
	if err := ensureCredentialsIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure credentials indexes: %w", err)
	}
	return nil
}

func ensureCustomersIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColCustomers)
	models := []mongo.IndexModel{
		newIndex("email", 1, "customers_email_unique", true),
		newIndex("created_at", 1, "customers_created_at", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensureProductsIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColProducts)
	models := []mongo.IndexModel{
		newIndex("slug", 1, "products_slug_unique", true),
		newIndex("line", 1, "products_line", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensureApplicationsIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColApplications)
	models := []mongo.IndexModel{
		newIndex("customer_id", 1, "apps_customer_id", false),
		newIndex("status", 1, "apps_status", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensureAssessmentsIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColAssessments)
	models := []mongo.IndexModel{
		newIndex("application_id", 1, "assessments_application_id_unique", true),
		newIndex("result", 1, "assessments_result", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensureDecisionsIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColDecisions)
	models := []mongo.IndexModel{
		newIndex("application_id", 1, "decisions_application_id_unique", true),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensurePoliciesIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColPolicies)
	models := []mongo.IndexModel{
		newIndex("number", 1, "policies_number_unique", true),
		newIndex("application_id", 1, "policies_application_id_unique", true),
		newIndex("customer_id", 1, "policies_customer_id", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensurePaymentsIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColPayments)
	models := []mongo.IndexModel{
		newIndex("policy_id", 1, "payments_policy_id", false),
		newIndex("status", 1, "payments_status", false),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensureCredentialsIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColCredentials)
	models := []mongo.IndexModel{
		newIndex("email", 1, "credentials_email_unique", true),
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func newIndex(field string, asc int32, name string, unique bool) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts = opts.SetUnique(true)
	}
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: asc}},
		Options: opts,
	}
}
