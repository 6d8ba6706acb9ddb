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

type ReportRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewReportRepo(db *mongodrv.Database, opTimeout time.Duration) *ReportRepoMongo {
	return &ReportRepoMongo{
		coll:      db.Collection(ColReports),
		opTimeout: opTimeout,
	}
}

func (repo *ReportRepoMongo) Create(ctx context.Context, r core.RiskReport) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toReportDoc(r)
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("reports.insert: %w", err)
	}
	return nil
}

func (repo *ReportRepoMongo) Get(ctx context.Context, id string) (core.RiskReport, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc ReportDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.RiskReport{}, core.ErrReportNotFound
		}
		return core.RiskReport{}, fmt.Errorf("reports.findOne: %w", err)
	}
	return fromReportDoc(doc), nil
}

func (repo *ReportRepoMongo) List(ctx context.Context, limit int) ([]core.RiskReport, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "generated_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("reports.find: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []core.RiskReport
	for cursor.Next(ctx) {
		var doc ReportDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("reports.decode: %w", err)
		}
		reports = append(reports, fromReportDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("reports.cursor: %w", err)
	}

	return reports, nil
}
