package core

import (
	"context"
	"fmt"
	"time"
)

type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "ACTIVE"
	PolicyStatusLapsed    PolicyStatus = "LAPSED"
	PolicyStatusCancelled PolicyStatus = "CANCELLED"
	PolicyStatusExpired   PolicyStatus = "EXPIRED"
)

// DefaultCoverageAmount applies when the assessment carried no explicit
// coverage amount.
const DefaultCoverageAmount = 500000

// Policy is issued from an approved application; exactly one per
// application. Coverage runs twelve months with a renewal reminder at
// eleven.
type Policy struct {
	ID             string           `json:"id"`
	Number         string           `json:"number"` // e.g. POL-2026-000001
	ApplicationID  string           `json:"application_id"`
	CustomerID     string           `json:"customer_id"`
	ProductSlug    string           `json:"product_slug"`
	CoverageAmount int64            `json:"coverage_amount"`
	Premium        PremiumBreakdown `json:"premium"`
	Status         PolicyStatus     `json:"status"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`     // StartDate + 12 months
	RenewalDate    time.Time        `json:"renewal_date"` // StartDate + 11 months
	IssuedAt       time.Time        `json:"issued_at"`
}

type PolicyFilter struct {
	CustomerID string
	Status     PolicyStatus
}

type PolicyRepo interface {
	Create(ctx context.Context, p Policy) error
	Get(ctx context.Context, id string) (Policy, error)
	GetByNumber(ctx context.Context, number string) (Policy, error)
	GetByApplicationID(ctx context.Context, appID string) (Policy, error)
	List(ctx context.Context, filter PolicyFilter, limit, offset int) ([]Policy, int64, error)
	NextPolicyNumber(ctx context.Context) (string, error)
	All(ctx context.Context) ([]Policy, error)
}

// NewPolicy synthesizes a policy for an approved application. Callers are
// responsible for checking approval; this constructor only shapes the
// record.
func NewPolicy(id, number string, app Application, coverageAmount int64, start time.Time) Policy {
	if coverageAmount <= 0 {
		coverageAmount = DefaultCoverageAmount
	}
	return Policy{
		ID:             id,
		Number:         number,
		ApplicationID:  app.ID,
		CustomerID:     app.CustomerID,
		ProductSlug:    app.ProductSlug,
		CoverageAmount: coverageAmount,
		Premium:        app.Premium,
		Status:         PolicyStatusActive,
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, 0),
		RenewalDate:    start.AddDate(0, 11, 0),
		IssuedAt:       start,
	}
}

var (
	ErrPolicyNotFound = fmt.Errorf("%w: policy not found", ErrNotFound)
	ErrPolicyExists   = fmt.Errorf("%w: policy already exists for application", ErrConflict)
)
