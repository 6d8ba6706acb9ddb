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

type AssessmentRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewAssessmentRepo(db *mongodrv.Database, opTimeout time.Duration) *AssessmentRepoMongo {
	return &AssessmentRepoMongo{
		coll:      db.Collection(ColAssessments),
		opTimeout: opTimeout,
	}
}

func (repo *AssessmentRepoMongo) Create(ctx context.Context, a core.RiskAssessment) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toAssessmentDoc(a)
	_, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		var we mongodrv.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return core.ErrAssessmentExists
				}
			}
		}
		return fmt.Errorf("assessments.insert: %w", err)
	}
	return nil
}

func (repo *AssessmentRepoMongo) Get(ctx context.Context, id string) (core.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc AssessmentDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.RiskAssessment{}, core.ErrAssessmentNotFound
		}
		return core.RiskAssessment{}, fmt.Errorf("assessments.findOne: %w", err)
	}
	return fromAssessmentDoc(doc), nil
}

func (repo *AssessmentRepoMongo) GetByApplicationID(ctx context.Context, appID string) (core.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc AssessmentDoc
	err := repo.coll.FindOne(ctx, bson.M{"application_id": appID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.RiskAssessment{}, core.ErrAssessmentNotFound
		}
		return core.RiskAssessment{}, fmt.Errorf("assessments.findByApp: %w", err)
	}
	return fromAssessmentDoc(doc), nil
}

func (repo *AssessmentRepoMongo) FindByResult(ctx context.Context, result core.AssessmentResult, limit int) ([]core.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{"result": string(result)}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "assessed_at", Value: 1}})

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("assessments.find: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeAssessments(ctx, cursor)
}

func (repo *AssessmentRepoMongo) All(ctx context.Context) ([]core.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("assessments.find: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeAssessments(ctx, cursor)
}

func decodeAssessments(ctx context.Context, cursor *mongodrv.Cursor) ([]core.RiskAssessment, error) {
	var assessments []core.RiskAssessment
	for cursor.Next(ctx) {
		var doc AssessmentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("assessments.decode: %w", err)
		}
		assessments = append(assessments, fromAssessmentDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("assessments.cursor: %w", err)
	}
	return assessments, nil
}

type DecisionRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewDecisionRepo(db *mongodrv.Database, opTimeout time.Duration) *DecisionRepoMongo {
	return &DecisionRepoMongo{
		coll:      db.Collection(ColDecisions),
		opTimeout: opTimeout,
	}
}

func (repo *DecisionRepoMongo) Create(ctx context.Context, d core.UnderwritingDecision) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toDecisionDoc(d)
	_, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		var we mongodrv.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return core.ErrDecisionExists
				}
			}
		}
		return fmt.Errorf("decisions.insert: %w", err)
	}
	return nil
}

func (repo *DecisionRepoMongo) Get(ctx context.Context, id string) (core.UnderwritingDecision, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc DecisionDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.UnderwritingDecision{}, core.ErrDecisionNotFound
		}
		return core.UnderwritingDecision{}, fmt.Errorf("decisions.findOne: %w", err)
	}
	return fromDecisionDoc(doc), nil
}

func (repo *DecisionRepoMongo) GetByApplicationID(ctx context.Context, appID string) (core.UnderwritingDecision, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc DecisionDoc
	err := repo.coll.FindOne(ctx, bson.M{"application_id": appID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.UnderwritingDecision{}, core.ErrDecisionNotFound
		}
		return core.UnderwritingDecision{}, fmt.Errorf("decisions.findByApp: %w", err)
	}
	return fromDecisionDoc(doc), nil
}
