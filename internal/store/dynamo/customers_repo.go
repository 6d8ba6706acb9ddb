package dynamo

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aurorains/insurance-platform/internal/core"
)

type CustomerItem struct {
	ID          string `dynamodbav:"id"`
	FirstName   string `dynamodbav:"first_name"`
	LastName    string `dynamodbav:"last_name"`
	Email       string `dynamodbav:"email"`
	DateOfBirth string `dynamodbav:"date_of_birth,omitempty"`
	Phone       string `dynamodbav:"phone,omitempty"`
	Address     string `dynamodbav:"address,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
}

func (i CustomerItem) ToCore() core.Customer {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	return core.Customer{
		ID:          i.ID,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		Email:       i.Email,
		DateOfBirth: i.DateOfBirth,
		Phone:       i.Phone,
		Address:     i.Address,
		CreatedAt:   createdAt,
	}
}

func customerItemFromCore(c core.Customer) CustomerItem {
	return CustomerItem{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		DateOfBirth: c.DateOfBirth,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

type CustomerRepo struct {
	client *dynamodb.Client
}

func NewCustomerRepo(client *dynamodb.Client) *CustomerRepo {
	return &CustomerRepo{client: client}
}

func (r *CustomerRepo) Create(ctx context.Context, c core.Customer) error {
	// DynamoDB has no secondary unique constraint, so the email check is a
	// read-before-write against the email GSI.
	_, err := queryOneByAttr[CustomerItem](ctx, r.client, TableCustomers, "email", c.Email, core.ErrCustomerNotFound)
	if err == nil {
		return core.ErrConflict
	}
	if !errors.Is(err, core.ErrCustomerNotFound) {
		return err
	}

	return putNew(ctx, r.client, TableCustomers, customerItemFromCore(c), core.ErrConflict)
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (core.Customer, error) {
	item, err := getByID[CustomerItem](ctx, r.client, TableCustomers, id, core.ErrCustomerNotFound)
	if err != nil {
		return core.Customer{}, err
	}
	return item.ToCore(), nil
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (core.Customer, error) {
	item, err := queryOneByAttr[CustomerItem](ctx, r.client, TableCustomers, "email", email, core.ErrCustomerNotFound)
	if err != nil {
		return core.Customer{}, err
	}
	return item.ToCore(), nil
}

func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]core.Customer, error) {
	items, err := scanAll[CustomerItem](ctx, r.client, TableCustomers)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt > items[b].CreatedAt
	})
	items = pageSlice(items, limit, offset)

	customers := make([]core.Customer, len(items))
	for i, item := range items {
		customers[i] = item.ToCore()
	}
	return customers, nil
}
