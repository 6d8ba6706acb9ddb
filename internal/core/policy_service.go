package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurorains/insurance-platform/internal/platform/ids"
)

type PolicyService interface {
	// IssueFromApplication creates a policy and its initial premium payment
	// from an approved application (called by the issuance worker)
	IssueFromApplication(ctx context.Context, appID string) (Policy, error)

	Get(ctx context.Context, id string) (Policy, error)
	GetByNumber(ctx context.Context, number string) (Policy, error)
	List(ctx context.Context, filter PolicyFilter, limit, offset int) ([]Policy, int64, error)
}

type policyService struct {
	policies PolicyRepo
	payments PaymentRepo
	apps     ApplicationRepo
	issued   func()
	clock    func() time.Time
}

// NewPolicyService builds the policy service. issued is invoked for every
// freshly issued policy (used for the issuance counter metric); it may be
// nil.
func NewPolicyService(policies PolicyRepo, payments PaymentRepo, apps ApplicationRepo, issued func()) PolicyService {
	if issued == nil {
		issued = func() {}
	}
	return &policyService{
		policies: policies,
		payments: payments,
		apps:     apps,
		issued:   issued,
		clock:    time.Now,
	}
}

func (s *policyService) IssueFromApplication(ctx context.Context, appID string) (Policy, error) {
	// 1) Load application
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return Policy{}, err
	}

	// 2) Only approved applications are issuable
	if app.Status != ApplicationStatusApproved {
		return Policy{}, fmt.Errorf("%w: application is not approved", ErrInvalidState)
	}

	// 3) One policy per application. A crash after the policy insert can
	//    leave the initial payment or the application back-reference missing;
	//    heal both before returning the existing policy.
	existing, err := s.policies.GetByApplicationID(ctx, appID)
	if err == nil {
		if err := s.ensureInitialPayment(ctx, existing); err != nil {
			return Policy{}, err
		}
		if app.PolicyID == "" {
			if err := s.apps.SetPolicyID(ctx, appID, existing.ID, s.clock()); err != nil {
				return Policy{}, err
			}
		}
		return existing, nil
	}
	if !errors.Is(err, ErrPolicyNotFound) {
		return Policy{}, err
	}

	// 4) Coverage tiers carry no explicit amount yet, so issuance uses the
	//    default; NewPolicy also falls back to it for non-positive amounts.
	coverageAmount := int64(DefaultCoverageAmount)

	// 5) Generate the policy number
	number, err := s.policies.NextPolicyNumber(ctx)
	if err != nil {
		return Policy{}, fmt.Errorf("generate policy number: %w", err)
	}

	// 6) Create the policy
	now := s.clock()
	policy := NewPolicy(ids.New(), number, app, coverageAmount, now)
	if err := s.policies.Create(ctx, policy); err != nil {
		if errors.Is(err, ErrPolicyExists) {
			// Another worker got there first
			return s.policies.GetByApplicationID(ctx, appID)
		}
		return Policy{}, err
	}

	// 7) Synthesize the single initial premium payment
	payment := NewPremiumPayment(ids.New(), policy, now)
	if err := s.payments.Create(ctx, payment); err != nil {
		return Policy{}, fmt.Errorf("create initial payment: %w", err)
	}

	// 8) Record the policy on the application so the issuance poll skips it
	if err := s.apps.SetPolicyID(ctx, appID, policy.ID, now); err != nil {
		return Policy{}, err
	}
	s.issued()

	return policy, nil
}

// ensureInitialPayment backfills the initial premium payment for a policy
// whose issuance was interrupted before the payment insert.
func (s *policyService) ensureInitialPayment(ctx context.Context, policy Policy) error {
	payments, err := s.payments.ListByPolicyID(ctx, policy.ID)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		return nil
	}
	return s.payments.Create(ctx, NewPremiumPayment(ids.New(), policy, s.clock()))
}

func (s *policyService) Get(ctx context.Context, id string) (Policy, error) {
	if id == "" {
		return Policy{}, fmt.Errorf("%w: missing policy ID", ErrValidation)
	}
	return s.policies.Get(ctx, id)
}

func (s *policyService) GetByNumber(ctx context.Context, number string) (Policy, error) {
	if number == "" {
		return Policy{}, fmt.Errorf("%w: missing policy number", ErrValidation)
	}
	return s.policies.GetByNumber(ctx, number)
}

func (s *policyService) List(ctx context.Context, filter PolicyFilter, limit, offset int) ([]Policy, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.policies.List(ctx, filter, limit, offset)
}
