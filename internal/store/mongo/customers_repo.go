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

type CustomerRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewCustomerRepo(db *mongodrv.Database, opTimeout time.Duration) *CustomerRepoMongo {
	return &CustomerRepoMongo{
		coll:      db.Collection(ColCustomers),
		opTimeout: opTimeout,
	}
}

func (repo *CustomerRepoMongo) Create(ctx context.Context, c core.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toCustomerDoc(c)
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
		return fmt.Errorf("customers.insert: %w", err)
	}
	return nil
}

func (repo *CustomerRepoMongo) Get(ctx context.Context, id string) (core.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc CustomerDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Customer{}, core.ErrCustomerNotFound
		}
		return core.Customer{}, fmt.Errorf("customers.findOne: %w", err)
	}
	return fromCustomerDoc(doc), nil
}

func (repo *CustomerRepoMongo) GetByEmail(ctx context.Context, email string) (core.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc CustomerDoc
	err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Customer{}, core.ErrCustomerNotFound
		}
		return core.Customer{}, fmt.Errorf("customers.findByEmail: %w", err)
	}
	return fromCustomerDoc(doc), nil
}

func (repo *CustomerRepoMongo) List(ctx context.Context, limit, offset int) ([]core.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("customers.find: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []core.Customer
	for cursor.Next(ctx) {
		var doc CustomerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("customers.decode: %w", err)
		}
		customers = append(customers, fromCustomerDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("customers.cursor: %w", err)
	}

	return customers, nil
}
