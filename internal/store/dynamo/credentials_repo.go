package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aurorains/insurance-platform/internal/core"
)

type CredentialItem struct {
	ID           string `dynamodbav:"id"`
	Email        string `dynamodbav:"email"`
	PasswordHash string `dynamodbav:"password_hash"`
	Role         string `dynamodbav:"role"`
	CustomerID   string `dynamodbav:"customer_id,omitempty"`
	CreatedAt    string `dynamodbav:"created_at"`
}

func (i CredentialItem) ToCore() core.Credential {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return core.Credential{
		ID:           i.ID,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Role:         core.Role(i.Role),
		CustomerID:   i.CustomerID,
		CreatedAt:    createdAt,
	}
}

func credentialItemFromCore(c core.Credential) CredentialItem {
	return CredentialItem{
		ID:           c.ID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         string(c.Role),
		CustomerID:   c.CustomerID,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

type CredentialRepo struct {
	client *dynamodb.Client
}

func NewCredentialRepo(client *dynamodb.Client) *CredentialRepo {
	return &CredentialRepo{client: client}
}

func (r *CredentialRepo) Create(ctx context.Context, c core.Credential) error {
	_, err := r.GetByEmail(ctx, c.Email)
	if err == nil {
		return core.ErrCredentialExists
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	return putNew(ctx, r.client, TableCredentials, credentialItemFromCore(c), core.ErrCredentialExists)
}

func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (core.Credential, error) {
	item, err := queryOneByAttr[CredentialItem](ctx, r.client, TableCredentials, "email", email, core.ErrNotFound)
	if err != nil {
		return core.Credential{}, err
	}
	return item.ToCore(), nil
}
