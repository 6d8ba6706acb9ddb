package core

import (
	"context"
	"fmt"
)

// ProductLine is the line of business a product belongs to.
type ProductLine string

const (
	ProductLineHealth ProductLine = "health"
	ProductLineLife   ProductLine = "life"
	ProductLineMotor  ProductLine = "motor"
)

// CoverageLevel is the coverage tier a customer selects on an application.
type CoverageLevel string

const (
	CoverageBasic    CoverageLevel = "basic"
	CoverageStandard CoverageLevel = "standard"
	CoveragePremium  CoverageLevel = "premium"
)

// Product is an admin-managed catalogue entry. BasePremium is the annual
// premium before risk and coverage adjustments.
type Product struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Line        ProductLine `json:"line"`
	BasePremium float64     `json:"base_premium"`
	Description string      `json:"description,omitempty"`
}

type ProductRepo interface {
	List(ctx context.Context) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	UpsertBySlug(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

func (p Product) Validate() error {
	if p.Slug == "" {
		return fmt.Errorf("%w: missing slug", ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrValidation)
	}
	switch p.Line {
	case ProductLineHealth, ProductLineLife, ProductLineMotor:
	default:
		return fmt.Errorf("%w: line must be health, life or motor", ErrValidation)
	}
	if p.BasePremium <= 0 {
		return fmt.Errorf("%w: base premium must be > 0", ErrValidation)
	}
	return nil
}

var (
	ErrProductNotFound = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrProductConflict = fmt.Errorf("%w: product already exists", ErrConflict)
)
