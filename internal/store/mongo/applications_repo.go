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

type ApplicationRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewApplicationRepo(db *mongodrv.Database, opTimeout time.Duration) *ApplicationRepoMongo {
	return &ApplicationRepoMongo{
		coll:      db.Collection(ColApplications),
		opTimeout: opTimeout,
	}
}

func (repo *ApplicationRepoMongo) Create(ctx context.Context, app core.Application) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toApplicationDoc(app)
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
		return fmt.Errorf("applications.insert: %w", err)
	}
	return nil
}

func (repo *ApplicationRepoMongo) Get(ctx context.Context, id string) (core.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc ApplicationDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Application{}, core.ErrApplicationNotFound
		}
		return core.Application{}, fmt.Errorf("applications.findOne: %w", err)
	}
	return fromApplicationDoc(doc), nil
}

func (repo *ApplicationRepoMongo) UpdateStatus(ctx context.Context, id string, status core.ApplicationStatus, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     string(status),
			"updated_at": updatedAt,
		},
	}

	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("applications.updateStatus: %w", err)
	}
	if result.MatchedCount == 0 {
		return core.ErrApplicationNotFound
	}
	return nil
}

func (repo *ApplicationRepoMongo) MarkAssessed(ctx context.Context, id string, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"assessed":   true,
			"updated_at": updatedAt,
		},
	}

	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("applications.markAssessed: %w", err)
	}
	if result.MatchedCount == 0 {
		return core.ErrApplicationNotFound
	}
	return nil
}

func (repo *ApplicationRepoMongo) SetPolicyID(ctx context.Context, id, policyID string, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"policy_id":  policyID,
			"updated_at": updatedAt,
		},
	}

	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("applications.setPolicyID: %w", err)
	}
	if result.MatchedCount == 0 {
		return core.ErrApplicationNotFound
	}
	return nil
}

func (repo *ApplicationRepoMongo) List(ctx context.Context, filter core.ApplicationFilter, limit, offset int) ([]core.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	mongoFilter := bson.M{}
	if filter.CustomerID != "" {
		mongoFilter["customer_id"] = filter.CustomerID
	}
	if filter.Status != "" {
		mongoFilter["status"] = string(filter.Status)
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := repo.coll.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("applications.find: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []core.Application
	for cursor.Next(ctx) {
		var doc ApplicationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("applications.decode: %w", err)
		}
		apps = append(apps, fromApplicationDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("applications.cursor: %w", err)
	}

	return apps, nil
}

func (repo *ApplicationRepoMongo) FindByStatus(ctx context.Context, status core.ApplicationStatus, limit int) ([]core.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{"status": string(status)}
	return repo.findOldestFirst(ctx, filter, limit, "applications.findByStatus")
}

// FindAwaitingAssessment returns pending applications that have no risk
// assessment yet. Referred applications stay pending after assessment, so
// the assessed flag keeps them out of the underwriting poll.
func (repo *ApplicationRepoMongo) FindAwaitingAssessment(ctx context.Context, limit int) ([]core.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{
		"status":   string(core.ApplicationStatusPending),
		"assessed": bson.M{"$ne": true},
	}
	return repo.findOldestFirst(ctx, filter, limit, "applications.findAwaitingAssessment")
}

// FindAwaitingIssuance returns approved applications that have no policy yet.
func (repo *ApplicationRepoMongo) FindAwaitingIssuance(ctx context.Context, limit int) ([]core.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{
		"status":    string(core.ApplicationStatusApproved),
		"policy_id": bson.M{"$exists": false},
	}
	return repo.findOldestFirst(ctx, filter, limit, "applications.findAwaitingIssuance")
}

func (repo *ApplicationRepoMongo) findOldestFirst(ctx context.Context, filter bson.M, limit int, op string) ([]core.Application, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var apps []core.Application
	for cursor.Next(ctx) {
		var doc ApplicationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("applications.decode: %w", err)
		}
		apps = append(apps, fromApplicationDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("applications.cursor: %w", err)
	}

	return apps, nil
}
