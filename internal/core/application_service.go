package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurorains/insurance-platform/internal/platform/ids"
)

type ApplicationService interface {
	Create(ctx context.Context, in ApplicationInput) (Application, error)
	Get(ctx context.Context, id string) (Application, error)
	List(ctx context.Context, filter ApplicationFilter, limit, offset int) ([]Application, error)
}

type applicationService struct {
	apps      ApplicationRepo
	customers CustomerRepo
	products  ProductRepo
	clock     func() time.Time
}

func NewApplicationService(apps ApplicationRepo, customers CustomerRepo, products ProductRepo) ApplicationService {
	return &applicationService{
		apps:      apps,
		customers: customers,
		products:  products,
		clock:     time.Now,
	}
}

func (s *applicationService) Create(ctx context.Context, in ApplicationInput) (Application, error) {
	// 1) Validate input
	if err := in.Validate(); err != nil {
		return Application{}, err
	}

	// 2) Load customer (DOB and ID feed the risk engine)
	customer, err := s.customers.Get(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Application{}, fmt.Errorf("%w: customer %q", ErrNotFound, in.CustomerID)
		}
		return Application{}, err
	}

	// 3) Load product for line and base premium
	product, err := s.products.GetBySlug(ctx, in.ProductSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Application{}, fmt.Errorf("%w: product %q", ErrNotFound, in.ProductSlug)
		}
		return Application{}, err
	}

	// 4) Score risk and price the premium; both are snapshotted onto the
	//    application and never recomputed.
	now := s.clock()
	score := CalculateRiskScore(RiskInput{
		CustomerID:            customer.ID,
		DateOfBirth:           customer.DateOfBirth,
		ProductLine:           product.Line,
		MedicalHistory:        in.MedicalHistory,
		PreExistingConditions: in.PreExistingConditions,
		CurrentMedications:    in.CurrentMedications,
	}, now)
	premium := CalculatePremium(product.BasePremium, score.Score, in.Coverage)

	// 5) Create application
	app := Application{
		ID:                    ids.New(),
		CustomerID:            customer.ID,
		ProductID:             product.ID,
		ProductSlug:           product.Slug,
		ProductLine:           product.Line,
		Coverage:              in.Coverage,
		MedicalHistory:        in.MedicalHistory,
		PreExistingConditions: in.PreExistingConditions,
		CurrentMedications:    in.CurrentMedications,
		VehicleDetails:        in.VehicleDetails,
		DrivingHistory:        in.DrivingHistory,
		PreviousClaims:        in.PreviousClaims,
		RiskScore:             score.Score,
		RiskComponents:        score.Components,
		Premium:               premium,
		Status:                ApplicationStatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	// 6) Persist
	if err := s.apps.Create(ctx, app); err != nil {
		return Application{}, err
	}

	return app, nil
}

func (s *applicationService) Get(ctx context.Context, id string) (Application, error) {
	if id == "" {
		return Application{}, fmt.Errorf("%w: missing application ID", ErrValidation)
	}
	return s.apps.Get(ctx, id)
}

func (s *applicationService) List(ctx context.Context, filter ApplicationFilter, limit, offset int) ([]Application, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.apps.List(ctx, filter, limit, offset)
}
