package core

import (
	"context"
	"fmt"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a customer's request for cover. The risk fields (score,
// components, premium) are computed once at creation from the engine and are
// immutable afterwards; only the status changes, and only through an
// underwriting decision.
type Application struct {
	ID          string        `json:"id"`
	CustomerID  string        `json:"customer_id"`
	ProductID   string        `json:"product_id"`
	ProductSlug string        `json:"product_slug"`
	ProductLine ProductLine   `json:"product_line"`
	Coverage    CoverageLevel `json:"coverage"`

	// Free-text underwriting fields captured from the portal forms.
	MedicalHistory        string `json:"medical_history,omitempty"`
	PreExistingConditions string `json:"pre_existing_conditions,omitempty"`
	CurrentMedications    string `json:"current_medications,omitempty"`
	VehicleDetails        string `json:"vehicle_details,omitempty"`
	DrivingHistory        string `json:"driving_history,omitempty"`
	PreviousClaims        string `json:"previous_claims,omitempty"`

	// Computed at creation, never recomputed.
	RiskScore      int              `json:"risk_score"`
	RiskComponents RiskComponents   `json:"risk_components"`
	Premium        PremiumBreakdown `json:"premium"`

	Status ApplicationStatus `json:"status"`

	// Pipeline progress markers. Referred applications stay pending and
	// approved applications keep their status after issuance, so the workers
	// need these to poll only unfinished work.
	Assessed bool   `json:"assessed"`
	PolicyID string `json:"policy_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ApplicationInput struct {
	CustomerID            string        `json:"customer_id"`
	ProductSlug           string        `json:"product_slug"`
	Coverage              CoverageLevel `json:"coverage"`
	MedicalHistory        string        `json:"medical_history,omitempty"`
	PreExistingConditions string        `json:"pre_existing_conditions,omitempty"`
	CurrentMedications    string        `json:"current_medications,omitempty"`
	VehicleDetails        string        `json:"vehicle_details,omitempty"`
	DrivingHistory        string        `json:"driving_history,omitempty"`
	PreviousClaims        string        `json:"previous_claims,omitempty"`
}

type ApplicationFilter struct {
	CustomerID string
	Status     ApplicationStatus
}

type ApplicationRepo interface {
	Create(ctx context.Context, app Application) error
	Get(ctx context.Context, id string) (Application, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus, updatedAt time.Time) error
	MarkAssessed(ctx context.Context, id string, updatedAt time.Time) error
	SetPolicyID(ctx context.Context, id, policyID string, updatedAt time.Time) error
	List(ctx context.Context, filter ApplicationFilter, limit, offset int) ([]Application, error)
	FindByStatus(ctx context.Context, status ApplicationStatus, limit int) ([]Application, error)

	// FindAwaitingAssessment returns pending applications that have no risk
	// assessment yet, oldest first. Referred applications stay pending after
	// assessment and must not fill the worker's batch.
	FindAwaitingAssessment(ctx context.Context, limit int) ([]Application, error)

	// FindAwaitingIssuance returns approved applications that have no policy
	// yet, oldest first.
	FindAwaitingIssuance(ctx context.Context, limit int) ([]Application, error)
}

func (in ApplicationInput) Validate() error {
	if in.CustomerID == "" {
		return fmt.Errorf("%w: customer_id is required", ErrValidation)
	}
	if in.ProductSlug == "" {
		return fmt.Errorf("%w: product_slug is required", ErrValidation)
	}
	switch in.Coverage {
	case CoverageBasic, CoverageStandard, CoveragePremium:
	case "":
		return fmt.Errorf("%w: coverage is required", ErrValidation)
	default:
		return fmt.Errorf("%w: coverage must be basic, standard or premium", ErrValidation)
	}
	return nil
}

// CanTransitionTo checks if a status transition is valid. Applications only
// leave pending through an underwriting decision.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	transitions := map[ApplicationStatus][]ApplicationStatus{
		ApplicationStatusPending: {ApplicationStatusApproved, ApplicationStatusRejected},
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var ErrApplicationNotFound = fmt.Errorf("%w: application not found", ErrNotFound)
