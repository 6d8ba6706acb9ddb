package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/aurorains/insurance-platform/internal/core"
)

type CredentialRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewCredentialRepo(db *mongodrv.Database, opTimeout time.Duration) *CredentialRepoMongo {
	return &CredentialRepoMongo{
		coll:      db.Collection(ColCredentials),
		opTimeout: opTimeout,
	}
}

func (repo *CredentialRepoMongo) Create(ctx context.Context, c core.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	doc := toCredentialDoc(c)
	_, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		var we mongodrv.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return core.ErrCredentialExists
				}
			}
		}
		return fmt.Errorf("credentials.insert: %w", err)
	}
	return nil
}

func (repo *CredentialRepoMongo) GetByEmail(ctx context.Context, email string) (core.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc CredentialDoc
	err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Credential{}, core.ErrNotFound
		}
		return core.Credential{}, fmt.Errorf("credentials.findByEmail: %w", err)
	}
	return fromCredentialDoc(doc), nil
}
