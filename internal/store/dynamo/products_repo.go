package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aurorains/insurance-platform/internal/core"
)

type ProductItem struct {
	ID          string  `dynamodbav:"id"`
	Slug        string  `dynamodbav:"slug"`
	Name        string  `dynamodbav:"name"`
	Line        string  `dynamodbav:"line"`
	BasePremium float64 `dynamodbav:"base_premium"`
	Description string  `dynamodbav:"description,omitempty"`
}

func (i ProductItem) ToCore() core.Product {
	return core.Product{
		ID:          i.ID,
		Slug:        i.Slug,
		Name:        i.Name,
		Line:        core.ProductLine(i.Line),
		BasePremium: i.BasePremium,
		Description: i.Description,
	}
}

func productItemFromCore(p core.Product) ProductItem {
	return ProductItem{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Line:        string(p.Line),
		BasePremium: p.BasePremium,
		Description: p.Description,
	}
}

type ProductRepo struct {
	client *dynamodb.Client
}

func NewProductRepo(client *dynamodb.Client) *ProductRepo {
	return &ProductRepo{client: client}
}

func (r *ProductRepo) List(ctx context.Context) ([]core.Product, error) {
	items, err := scanAll[ProductItem](ctx, r.client, TableProducts)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(a, b int) bool { return items[a].Slug < items[b].Slug })

	products := make([]core.Product, len(items))
	for i, item := range items {
		products[i] = item.ToCore()
	}
	return products, nil
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (core.Product, error) {
	item, err := queryOneByAttr[ProductItem](ctx, r.client, TableProducts, "slug", slug, core.ErrProductNotFound)
	if err != nil {
		return core.Product{}, err
	}
	return item.ToCore(), nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (core.Product, error) {
	item, err := getByID[ProductItem](ctx, r.client, TableProducts, id, core.ErrProductNotFound)
	if err != nil {
		return core.Product{}, err
	}
	return item.ToCore(), nil
}

// UpsertBySlug inserts the product or replaces the existing record with the
// same slug, keeping its id.
func (r *ProductRepo) UpsertBySlug(ctx context.Context, p core.Product) error {
	existing, err := r.GetBySlug(ctx, p.Slug)
	switch {
	case err == nil:
		p.ID = existing.ID
	case errors.Is(err, core.ErrProductNotFound):
		// new product, keep the caller's id
	default:
		return err
	}
	return putItem(ctx, r.client, TableProducts, productItemFromCore(p))
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(TableProducts),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("products.deleteItem: %w", err)
	}
	if out.Attributes == nil {
		return core.ErrProductNotFound
	}
	return nil
}
