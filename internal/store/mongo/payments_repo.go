package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurorains/insurance-platform/internal/core"
)

type PaymentRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewPaymentRepo(db *mongodrv.Database, opTimeout time.Duration) *PaymentRepoMongo {
	return &PaymentRepoMongo{
		coll:      db.Collection(ColPayments),
		opTimeout: opTimeout,
	}
}

func (repo *PaymentRepoMongo) Create(ctx context.Context, p core.PremiumPayment) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toPaymentDoc(p)
	_, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		var we mongodrv.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return core.ErrConflict
				}
			}
		}
		return fmt.Errorf("payments.insert: %w", err)
	}
	return nil
}

func (repo *PaymentRepoMongo) Get(ctx context.Context, id string) (core.PremiumPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc PaymentDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.PremiumPayment{}, core.ErrPaymentNotFound
		}
		return core.PremiumPayment{}, fmt.Errorf("payments.findOne: %w", err)
	}
	return fromPaymentDoc(doc), nil
}

func (repo *PaymentRepoMongo) ListByPolicyID(ctx context.Context, policyID string) ([]core.PremiumPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"policy_id": policyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("payments.find: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []core.PremiumPayment
	for cursor.Next(ctx) {
		var doc PaymentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("payments.decode: %w", err)
		}
		payments = append(payments, fromPaymentDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("payments.cursor: %w", err)
	}

	return payments, nil
}

func (repo *PaymentRepoMongo) Update(ctx context.Context, p core.PremiumPayment) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toPaymentDoc(p)
	result, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc)
	if err != nil {
		return fmt.Errorf("payments.replace: %w", err)
	}
	if result.MatchedCount == 0 {
		return core.ErrPaymentNotFound
	}
	return nil
}
