package mongo

import (
	"time"

	"github.com/aurorains/insurance-platform/internal/core"
)

const (
	ColCustomers    = "customers"
	ColProducts     = "products"
	ColApplications = "applications"
	ColAssessments  = "risk_assessments"
	ColDecisions    = "underwriting_decisions"
	ColPolicies     = "policies"
	ColPayments     = "premium_payments"
	ColReports      = "risk_reports"
	ColCredentials  = "credentials"
	ColCounters     = "counters"
)

// Customer
type CustomerDoc struct {
	ID          string    `bson:"_id"`
	FirstName   string    `bson:"first_name"`
	LastName    string    `bson:"last_name"`
	Email       string    `bson:"email"` // unique index
	DateOfBirth string    `bson:"date_of_birth,omitempty"`
	Phone       string    `bson:"phone,omitempty"`
	Address     string    `bson:"address,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func fromCustomerDoc(d CustomerDoc) core.Customer {
	return core.Customer{
		ID:          d.ID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		DateOfBirth: d.DateOfBirth,
		Phone:       d.Phone,
		Address:     d.Address,
		CreatedAt:   d.CreatedAt,
	}
}

func toCustomerDoc(c core.Customer) CustomerDoc {
	return CustomerDoc{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		DateOfBirth: c.DateOfBirth,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
	}
}

// Product
type ProductDoc struct {
	ID          string  `bson:"_id"`
	Slug        string  `bson:"slug"` // unique index
	Name        string  `bson:"name"`
	Line        string  `bson:"line"`
	BasePremium float64 `bson:"base_premium"`
	Description string  `bson:"description,omitempty"`
}

func fromProductDoc(d ProductDoc) core.Product {
	return core.Product{
		ID:          d.ID,
		Slug:        d.Slug,
		Name:        d.Name,
		Line:        core.ProductLine(d.Line),
		BasePremium: d.BasePremium,
		Description: d.Description,
	}
}

func toProductDoc(p core.Product) ProductDoc {
	return ProductDoc{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Line:        string(p.Line),
		BasePremium: p.BasePremium,
		Description: p.Description,
	}
}

// Application
type ApplicationDoc struct {
	ID          string `bson:"_id"`
	CustomerID  string `bson:"customer_id"`
	ProductID   string `bson:"product_id"`
	ProductSlug string `bson:"product_slug"`
	ProductLine string `bson:"product_line"`
	Coverage    string `bson:"coverage"`

	MedicalHistory        string `bson:"medical_history,omitempty"`
	PreExistingConditions string `bson:"pre_existing_conditions,omitempty"`
	CurrentMedications    string `bson:"current_medications,omitempty"`
	VehicleDetails        string `bson:"vehicle_details,omitempty"`
	DrivingHistory        string `bson:"driving_history,omitempty"`
	PreviousClaims        string `bson:"previous_claims,omitempty"`

	RiskScore      int                   `bson:"risk_score"`
	RiskComponents core.RiskComponents   `bson:"risk_components"`
	Premium        core.PremiumBreakdown `bson:"premium"`

	Status    string    `bson:"status"`
	Assessed  bool      `bson:"assessed,omitempty"`
	PolicyID  string    `bson:"policy_id,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func fromApplicationDoc(d ApplicationDoc) core.Application {
	return core.Application{
		ID:                    d.ID,
		CustomerID:            d.CustomerID,
		ProductID:             d.ProductID,
		ProductSlug:           d.ProductSlug,
		ProductLine:           core.ProductLine(d.ProductLine),
		Coverage:              core.CoverageLevel(d.Coverage),
		MedicalHistory:        d.MedicalHistory,
		PreExistingConditions: d.PreExistingConditions,
		CurrentMedications:    d.CurrentMedications,
		VehicleDetails:        d.VehicleDetails,
		DrivingHistory:        d.DrivingHistory,
		PreviousClaims:        d.PreviousClaims,
		RiskScore:             d.RiskScore,
		RiskComponents:        d.RiskComponents,
		Premium:               d.Premium,
		Status:                core.ApplicationStatus(d.Status),
		Assessed:              d.Assessed,
		PolicyID:              d.PolicyID,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func toApplicationDoc(a core.Application) ApplicationDoc {
	return ApplicationDoc{
		ID:                    a.ID,
		CustomerID:            a.CustomerID,
		ProductID:             a.ProductID,
		ProductSlug:           a.ProductSlug,
		ProductLine:           string(a.ProductLine),
		Coverage:              string(a.Coverage),
		MedicalHistory:        a.MedicalHistory,
		PreExistingConditions: a.PreExistingConditions,
		CurrentMedications:    a.CurrentMedications,
		VehicleDetails:        a.VehicleDetails,
		DrivingHistory:        a.DrivingHistory,
		PreviousClaims:        a.PreviousClaims,
		RiskScore:             a.RiskScore,
		RiskComponents:        a.RiskComponents,
		Premium:               a.Premium,
		Status:                string(a.Status),
		Assessed:              a.Assessed,
		PolicyID:              a.PolicyID,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

// RiskAssessment
type AssessmentDoc struct {
	ID            string               `bson:"_id"`
	ApplicationID string               `bson:"application_id"` // unique index
	RiskScore     int                  `bson:"risk_score"`
	Components    core.RiskComponents  `bson:"components"`
	Result        string               `bson:"result"`
	Reason        string               `bson:"reason"`
	RulesApplied  []string             `bson:"rules_applied"`
	Exclusions    []string             `bson:"exclusions,omitempty"`
	Limits        *core.CoverageLimits `bson:"limits,omitempty"`
	AssessedBy    string               `bson:"assessed_by"`
	Status        string               `bson:"status"`
	AssessedAt    time.Time            `bson:"assessed_at"`
}

func fromAssessmentDoc(d AssessmentDoc) core.RiskAssessment {
	return core.RiskAssessment{
		ID:            d.ID,
		ApplicationID: d.ApplicationID,
		RiskScore:     d.RiskScore,
		Components:    d.Components,
		Result:        core.AssessmentResult(d.Result),
		Reason:        d.Reason,
		RulesApplied:  d.RulesApplied,
		Exclusions:    d.Exclusions,
		Limits:        d.Limits,
		AssessedBy:    d.AssessedBy,
		Status:        d.Status,
		AssessedAt:    d.AssessedAt,
	}
}

func toAssessmentDoc(a core.RiskAssessment) AssessmentDoc {
	return AssessmentDoc{
		ID:            a.ID,
		ApplicationID: a.ApplicationID,
		RiskScore:     a.RiskScore,
		Components:    a.Components,
		Result:        string(a.Result),
		Reason:        a.Reason,
		RulesApplied:  a.RulesApplied,
		Exclusions:    a.Exclusions,
		Limits:        a.Limits,
		AssessedBy:    a.AssessedBy,
		Status:        a.Status,
		AssessedAt:    a.AssessedAt,
	}
}

// UnderwritingDecision
type DecisionDoc struct {
	ID             string    `bson:"_id"`
	ApplicationID  string    `bson:"application_id"` // unique index
	AssessmentID   string    `bson:"assessment_id"`
	Status         string    `bson:"status"`
	Reason         string    `bson:"reason"`
	ReviewRequired bool      `bson:"review_required"`
	DecidedBy      string    `bson:"decided_by"`
	DecidedAt      time.Time `bson:"decided_at"`
}

func fromDecisionDoc(d DecisionDoc) core.UnderwritingDecision {
	return core.UnderwritingDecision{
		ID:             d.ID,
		ApplicationID:  d.ApplicationID,
		AssessmentID:   d.AssessmentID,
		Status:         core.DecisionStatus(d.Status),
		Reason:         d.Reason,
		ReviewRequired: d.ReviewRequired,
		DecidedBy:      d.DecidedBy,
		DecidedAt:      d.DecidedAt,
	}
}

func toDecisionDoc(d core.UnderwritingDecision) DecisionDoc {
	return DecisionDoc{
		ID:             d.ID,
		ApplicationID:  d.ApplicationID,
		AssessmentID:   d.AssessmentID,
		Status:         string(d.Status),
		Reason:         d.Reason,
		ReviewRequired: d.ReviewRequired,
		DecidedBy:      d.DecidedBy,
		DecidedAt:      d.DecidedAt,
	}
}

// Policy
type PolicyDoc struct {
	ID             string                `bson:"_id"`
	Number         string                `bson:"number"` // unique index
	ApplicationID  string                `bson:"application_id"` // unique index
	CustomerID     string                `bson:"customer_id"`
	ProductSlug    string                `bson:"product_slug"`
	CoverageAmount int64                 `bson:"coverage_amount"`
	Premium        core.PremiumBreakdown `bson:"premium"`
	Status         string                `bson:"status"`
	StartDate      time.Time             `bson:"start_date"`
	EndDate        time.Time             `bson:"end_date"`
	RenewalDate    time.Time             `bson:"renewal_date"`
	IssuedAt       time.Time             `bson:"issued_at"`
}

func fromPolicyDoc(d PolicyDoc) core.Policy {
	return core.Policy{
		ID:             d.ID,
		Number:         d.Number,
		ApplicationID:  d.ApplicationID,
		CustomerID:     d.CustomerID,
		ProductSlug:    d.ProductSlug,
		CoverageAmount: d.CoverageAmount,
		Premium:        d.Premium,
		Status:         core.PolicyStatus(d.Status),
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		RenewalDate:    d.RenewalDate,
		IssuedAt:       d.IssuedAt,
	}
}

func toPolicyDoc(p core.Policy) PolicyDoc {
	return PolicyDoc{
		ID:             p.ID,
		Number:         p.Number,
		ApplicationID:  p.ApplicationID,
		CustomerID:     p.CustomerID,
		ProductSlug:    p.ProductSlug,
		CoverageAmount: p.CoverageAmount,
		Premium:        p.Premium,
		Status:         string(p.Status),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		RenewalDate:    p.RenewalDate,
		IssuedAt:       p.IssuedAt,
	}
}

// PremiumPayment
type PaymentDoc struct {
	ID          string     `bson:"_id"`
	PolicyID    string     `bson:"policy_id"`
	Amount      float64    `bson:"amount"`
	TaxAmount   float64    `bson:"tax_amount"`
	FinalAmount float64    `bson:"final_amount"`
	Status      string     `bson:"status"`
	DueDate     time.Time  `bson:"due_date"`
	CreatedAt   time.Time  `bson:"created_at"`
	PaidAt      *time.Time `bson:"paid_at,omitempty"`
}

func fromPaymentDoc(d PaymentDoc) core.PremiumPayment {
	return core.PremiumPayment{
		ID:          d.ID,
		PolicyID:    d.PolicyID,
		Amount:      d.Amount,
		TaxAmount:   d.TaxAmount,
		FinalAmount: d.FinalAmount,
		Status:      core.PaymentStatus(d.Status),
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		PaidAt:      d.PaidAt,
	}
}

func toPaymentDoc(p core.PremiumPayment) PaymentDoc {
	return PaymentDoc{
		ID:          p.ID,
		PolicyID:    p.PolicyID,
		Amount:      p.Amount,
		TaxAmount:   p.TaxAmount,
		FinalAmount: p.FinalAmount,
		Status:      string(p.Status),
		DueDate:     p.DueDate,
		CreatedAt:   p.CreatedAt,
		PaidAt:      p.PaidAt,
	}
}

// RiskReport
type ReportDoc struct {
	ID                string         `bson:"_id"`
	GeneratedAt       time.Time      `bson:"generated_at"`
	TotalApplications int            `bson:"total_applications"`
	TotalPolicies     int            `bson:"total_policies"`
	ApprovedCount     int            `bson:"approved_count"`
	RejectedCount     int            `bson:"rejected_count"`
	PendingCount      int            `bson:"pending_count"`
	AverageRiskScore  float64        `bson:"average_risk_score"`
	ApprovalRate      string         `bson:"approval_rate"`
	RiskTiers         map[string]int `bson:"risk_tiers"`
	Recommendations   []string       `bson:"recommendations"`
}

func fromReportDoc(d ReportDoc) core.RiskReport {
	return core.RiskReport{
		ID:                d.ID,
		GeneratedAt:       d.GeneratedAt,
		TotalApplications: d.TotalApplications,
		TotalPolicies:     d.TotalPolicies,
		ApprovedCount:     d.ApprovedCount,
		RejectedCount:     d.RejectedCount,
		PendingCount:      d.PendingCount,
		AverageRiskScore:  d.AverageRiskScore,
		ApprovalRate:      d.ApprovalRate,
		RiskTiers:         d.RiskTiers,
		Recommendations:   d.Recommendations,
	}
}

func toReportDoc(r core.RiskReport) ReportDoc {
	return ReportDoc{
		ID:                r.ID,
		GeneratedAt:       r.GeneratedAt,
		TotalApplications: r.TotalApplications,
		TotalPolicies:     r.TotalPolicies,
		ApprovedCount:     r.ApprovedCount,
		RejectedCount:     r.RejectedCount,
		PendingCount:      r.PendingCount,
		AverageRiskScore:  r.AverageRiskScore,
		ApprovalRate:      r.ApprovalRate,
		RiskTiers:         r.RiskTiers,
		Recommendations:   r.Recommendations,
	}
}

// Credential
type CredentialDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"` // unique index
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CustomerID   string    `bson:"customer_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func fromCredentialDoc(d CredentialDoc) core.Credential {
	return core.Credential{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         core.Role(d.Role),
		CustomerID:   d.CustomerID,
		CreatedAt:    d.CreatedAt,
	}
}

func toCredentialDoc(c core.Credential) CredentialDoc {
	return CredentialDoc{
		ID:           c.ID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         string(c.Role),
		CustomerID:   c.CustomerID,
		CreatedAt:    c.CreatedAt,
	}
}
