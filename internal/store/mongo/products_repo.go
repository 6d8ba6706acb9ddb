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

type ProductRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewProductRepo(db *mongodrv.Database, opTimeout time.Duration) *ProductRepoMongo {
	return &ProductRepoMongo{
		coll:      db.Collection(ColProducts),
		opTimeout: opTimeout,
	}
}

func (repo *ProductRepoMongo) List(ctx context.Context) ([]core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("products.find: %w", err)
	}
	defer cursor.Close(ctx)

	var products []core.Product
	for cursor.Next(ctx) {
		var doc ProductDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("products.decode: %w", err)
		}
		products = append(products, fromProductDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("products.cursor: %w", err)
	}

	return products, nil
}

func (repo *ProductRepoMongo) GetBySlug(ctx context.Context, slug string) (core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc ProductDoc
	err := repo.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Product{}, core.ErrProductNotFound
		}
		return core.Product{}, fmt.Errorf("products.findBySlug: %w", err)
	}
	return fromProductDoc(doc), nil
}

func (repo *ProductRepoMongo) GetByID(ctx context.Context, id string) (core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc ProductDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Product{}, core.ErrProductNotFound
		}
		return core.Product{}, fmt.Errorf("products.findOne: %w", err)
	}
	return fromProductDoc(doc), nil
}

func (repo *ProductRepoMongo) UpsertBySlug(ctx context.Context, p core.Product) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toProductDoc(p)
	filter := bson.M{"slug": p.Slug}
	update := bson.M{"$set": bson.M{
		"name":         doc.Name,
		"line":         doc.Line,
		"base_premium": doc.BasePremium,
		"description":  doc.Description,
	}, "$setOnInsert": bson.M{"_id": doc.ID}}

	_, err := repo.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("products.upsert: %w", err)
	}
	return nil
}

func (repo *ProductRepoMongo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	result, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("products.delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return core.ErrProductNotFound
	}
	return nil
}
