package core

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Customer is a profile record. It is read-only input to the risk engine;
// DateOfBirth feeds the age estimator and ID feeds the claim-history hash.
type Customer struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"date_of_birth"` // YYYY-MM-DD, may be empty
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomerInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

type CustomerRepo interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, id string) (Customer, error)
	GetByEmail(ctx context.Context, email string) (Customer, error)
	List(ctx context.Context, limit, offset int) ([]Customer, error)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (in CustomerInput) Validate() error {
	if in.FirstName == "" {
		return fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if in.LastName == "" {
		return fmt.Errorf("%w: last name is required", ErrValidation)
	}
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailRegex.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	// A missing date of birth is allowed; the engine scores unknown ages
	// with a default bucket instead of refusing the customer.
	if in.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", in.DateOfBirth); err != nil {
			return fmt.Errorf("%w: date of birth must be YYYY-MM-DD", ErrValidation)
		}
	}
	return nil
}

var ErrCustomerNotFound = fmt.Errorf("%w: customer not found", ErrNotFound)
