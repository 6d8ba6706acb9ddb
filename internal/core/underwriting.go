package core

import (
	"context"
	"fmt"
	"time"
)

type DecisionStatus string

const (
	DecisionApproved      DecisionStatus = "APPROVED"
	DecisionDeclined      DecisionStatus = "DECLINED"
	DecisionPendingReview DecisionStatus = "PENDING_REVIEW"
)

// AssessedBySystem marks assessments produced by the automated engine rather
// than a human underwriter.
const AssessedBySystem = "AUTOMATED_SYSTEM"

const AssessmentStatusCompleted = "COMPLETED"

// RiskAssessment is the immutable record of one engine run over an
// application. Exactly one exists per application.
type RiskAssessment struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	RiskScore     int              `json:"risk_score"`
	Components    RiskComponents   `json:"components"`
	Result        AssessmentResult `json:"result"`
	Reason        string           `json:"reason"`
	RulesApplied  []string         `json:"rules_applied"`
	Exclusions    []string         `json:"exclusions,omitempty"`
	Limits        *CoverageLimits  `json:"limits,omitempty"`
	AssessedBy    string           `json:"assessed_by"`
	Status        string           `json:"status"`
	AssessedAt    time.Time        `json:"assessed_at"`
}

// UnderwritingDecision is the final word on an application: either the
// automated mapping of an assessment result, or a manual underwriter call on
// a referred case.
type UnderwritingDecision struct {
	ID             string         `json:"id"`
	ApplicationID  string         `json:"application_id"`
	AssessmentID   string         `json:"assessment_id"`
	Status         DecisionStatus `json:"status"`
	Reason         string         `json:"reason"`
	ReviewRequired bool           `json:"review_required"`
	DecidedBy      string         `json:"decided_by"` // "system" or underwriter user ID
	DecidedAt      time.Time      `json:"decided_at"`
}

// DecisionInput is a manual underwriter decision on a referred application.
type DecisionInput struct {
	Status DecisionStatus `json:"status"` // APPROVED or DECLINED
	Reason string         `json:"reason"`
}

type AssessmentRepo interface {
	Create(ctx context.Context, a RiskAssessment) error
	Get(ctx context.Context, id string) (RiskAssessment, error)
	GetByApplicationID(ctx context.Context, appID string) (RiskAssessment, error)
	FindByResult(ctx context.Context, result AssessmentResult, limit int) ([]RiskAssessment, error)
	All(ctx context.Context) ([]RiskAssessment, error)
}

type DecisionRepo interface {
	Create(ctx context.Context, d UnderwritingDecision) error
	Get(ctx context.Context, id string) (UnderwritingDecision, error)
	GetByApplicationID(ctx context.Context, appID string) (UnderwritingDecision, error)
}

func (in DecisionInput) Validate() error {
	if in.Status != DecisionApproved && in.Status != DecisionDeclined {
		return fmt.Errorf("%w: status must be APPROVED or DECLINED", ErrValidation)
	}
	if in.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrValidation)
	}
	return nil
}

// NewRiskAssessment bundles the aggregator and rule evaluator outputs into a
// persistable record.
func NewRiskAssessment(id, appID string, score RiskScore, outcome RuleOutcome, at time.Time) RiskAssessment {
	return RiskAssessment{
		ID:            id,
		ApplicationID: appID,
		RiskScore:     score.Score,
		Components:    score.Components,
		Result:        outcome.Result,
		Reason:        outcome.Reason,
		RulesApplied:  outcome.RulesApplied,
		Exclusions:    outcome.Exclusions,
		Limits:        outcome.Limits,
		AssessedBy:    AssessedBySystem,
		Status:        AssessmentStatusCompleted,
		AssessedAt:    at,
	}
}

// DecisionStatusFor maps an assessment result to a decision status: APPROVED
// and DECLINED carry over, everything else is referred for manual review.
func DecisionStatusFor(result AssessmentResult) (DecisionStatus, bool) {
	switch result {
	case ResultApproved:
		return DecisionApproved, false
	case ResultDeclined:
		return DecisionDeclined, false
	default:
		return DecisionPendingReview, true
	}
}

var (
	ErrAssessmentNotFound = fmt.Errorf("%w: risk assessment not found", ErrNotFound)
	ErrAssessmentExists   = fmt.Errorf("%w: assessment already exists for application", ErrConflict)
	ErrDecisionNotFound   = fmt.Errorf("%w: underwriting decision not found", ErrNotFound)
	ErrDecisionExists     = fmt.Errorf("%w: decision already exists for application", ErrConflict)
	ErrAlreadyDecided     = fmt.Errorf("%w: application already decided", ErrInvalidState)
)
