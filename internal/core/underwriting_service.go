package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurorains/insurance-platform/internal/platform/ids"
)

type UnderwritingService interface {
	// ProcessApplication is called by the worker for each pending application
	ProcessApplication(ctx context.Context, appID string) (RiskAssessment, error)

	// MakeDecision records a manual underwriter decision on a referred application
	MakeDecision(ctx context.Context, appID, decidedBy string, input DecisionInput) (UnderwritingDecision, error)

	GetAssessment(ctx context.Context, id string) (RiskAssessment, error)
	GetAssessmentByApplicationID(ctx context.Context, appID string) (RiskAssessment, error)

	// ListReviewQueue returns assessments awaiting a manual decision
	ListReviewQueue(ctx context.Context, limit int) ([]RiskAssessment, error)
}

// DecisionObserver is notified of every finalized underwriting decision.
// Used for the decision outcome metrics.
type DecisionObserver func(status DecisionStatus, auto bool)

type underwritingService struct {
	assessments AssessmentRepo
	decisions   DecisionRepo
	apps        ApplicationRepo
	customers   CustomerRepo
	observe     DecisionObserver
	clock       func() time.Time
}

func NewUnderwritingService(assessments AssessmentRepo, decisions DecisionRepo, apps ApplicationRepo, customers CustomerRepo, observe DecisionObserver) UnderwritingService {
	if observe == nil {
		observe = func(DecisionStatus, bool) {}
	}
	return &underwritingService{
		assessments: assessments,
		decisions:   decisions,
		apps:        apps,
		customers:   customers,
		observe:     observe,
		clock:       time.Now,
	}
}

func (s *underwritingService) ProcessApplication(ctx context.Context, appID string) (RiskAssessment, error) {
	// 1) Load application
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return RiskAssessment{}, err
	}

	// 2) Only pending applications go through underwriting
	if app.Status != ApplicationStatusPending {
		return RiskAssessment{}, fmt.Errorf("%w: application must be pending", ErrInvalidState)
	}

	// 3) Check if an assessment already exists (one per application). A crash
	//    between the assessment insert and the flag write can leave the
	//    application in the poll set; re-mark it here.
	existing, err := s.assessments.GetByApplicationID(ctx, appID)
	if err == nil {
		if !app.Assessed {
			if err := s.apps.MarkAssessed(ctx, appID, s.clock()); err != nil {
				return RiskAssessment{}, err
			}
		}
		return existing, nil
	}
	if !errors.Is(err, ErrAssessmentNotFound) {
		return RiskAssessment{}, err
	}

	// 4) Evaluate the rule table over the risk snapshot taken at submission.
	//    The score and components are never recomputed; only the age is
	//    re-derived, from the customer's DOB.
	now := s.clock()
	age := s.applicantAge(ctx, app, now)
	outcome := EvaluateRules(app.RiskScore, age)

	// 5) Create the assessment record
	assessment := NewRiskAssessment(ids.New(), appID, RiskScore{
		Score:      app.RiskScore,
		Components: app.RiskComponents,
		Age:        age,
	}, outcome, now)

	if err := s.assessments.Create(ctx, assessment); err != nil {
		if errors.Is(err, ErrConflict) {
			return s.assessments.GetByApplicationID(ctx, appID)
		}
		return RiskAssessment{}, err
	}

	// 6) Take the application out of the assessment poll set. Referred
	//    applications keep status pending, so without this flag they would
	//    fill every worker batch and starve newer submissions.
	if err := s.apps.MarkAssessed(ctx, appID, now); err != nil {
		return RiskAssessment{}, err
	}

	// 7) Auto-decide clear-cut outcomes; referred cases stay pending for a
	//    human underwriter.
	status, review := DecisionStatusFor(outcome.Result)
	if review {
		return assessment, nil
	}

	decision := UnderwritingDecision{
		ID:            ids.New(),
		ApplicationID: appID,
		AssessmentID:  assessment.ID,
		Status:        status,
		Reason:        outcome.Reason,
		DecidedBy:     "system",
		DecidedAt:     now,
	}
	if err := s.decisions.Create(ctx, decision); err != nil {
		return RiskAssessment{}, err
	}

	if err := s.transitionApplication(ctx, appID, status, now); err != nil {
		return RiskAssessment{}, err
	}
	s.observe(status, true)

	return assessment, nil
}

func (s *underwritingService) MakeDecision(ctx context.Context, appID, decidedBy string, input DecisionInput) (UnderwritingDecision, error) {
	// 1) Validate input
	if err := input.Validate(); err != nil {
		return UnderwritingDecision{}, err
	}

	// 2) Load application and verify it is still open
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return UnderwritingDecision{}, err
	}
	if app.Status != ApplicationStatusPending {
		return UnderwritingDecision{}, ErrAlreadyDecided
	}

	// 3) A manual decision requires a completed assessment
	assessment, err := s.assessments.GetByApplicationID(ctx, appID)
	if err != nil {
		return UnderwritingDecision{}, err
	}

	// 4) Refuse a second decision
	if _, err := s.decisions.GetByApplicationID(ctx, appID); err == nil {
		return UnderwritingDecision{}, ErrDecisionExists
	} else if !errors.Is(err, ErrDecisionNotFound) {
		return UnderwritingDecision{}, err
	}

	// 5) Record the decision
	now := s.clock()
	decision := UnderwritingDecision{
		ID:             ids.New(),
		ApplicationID:  appID,
		AssessmentID:   assessment.ID,
		Status:         input.Status,
		Reason:         input.Reason,
		ReviewRequired: true, // manual decisions only happen on referred cases
		DecidedBy:      decidedBy,
		DecidedAt:      now,
	}
	if err := s.decisions.Create(ctx, decision); err != nil {
		return UnderwritingDecision{}, err
	}

	// 6) Transition the application
	if err := s.transitionApplication(ctx, appID, input.Status, now); err != nil {
		return UnderwritingDecision{}, err
	}
	s.observe(input.Status, false)

	return decision, nil
}

func (s *underwritingService) GetAssessment(ctx context.Context, id string) (RiskAssessment, error) {
	if id == "" {
		return RiskAssessment{}, fmt.Errorf("%w: missing assessment ID", ErrValidation)
	}
	return s.assessments.Get(ctx, id)
}

func (s *underwritingService) GetAssessmentByApplicationID(ctx context.Context, appID string) (RiskAssessment, error) {
	if appID == "" {
		return RiskAssessment{}, fmt.Errorf("%w: missing application ID", ErrValidation)
	}
	return s.assessments.GetByApplicationID(ctx, appID)
}

func (s *underwritingService) ListReviewQueue(ctx context.Context, limit int) ([]RiskAssessment, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	assessments, err := s.assessments.FindByResult(ctx, ResultReviewRequired, limit)
	if err != nil {
		return nil, err
	}

	// Assessment results are immutable, so a referred assessment keeps
	// REVIEW_REQUIRED after the underwriter has ruled. Only applications
	// still pending belong in the queue.
	open := make([]RiskAssessment, 0, len(assessments))
	for _, a := range assessments {
		app, err := s.apps.Get(ctx, a.ApplicationID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if app.Status == ApplicationStatusPending {
			open = append(open, a)
		}
	}
	return open, nil
}

func (s *underwritingService) transitionApplication(ctx context.Context, appID string, status DecisionStatus, now time.Time) error {
	next := ApplicationStatusRejected
	if status == DecisionApproved {
		next = ApplicationStatusApproved
	}
	return s.apps.UpdateStatus(ctx, appID, next, now)
}

// applicantAge re-derives the applicant's age for the rule table from the
// customer DOB when available. Engine defaults apply when the lookup fails:
// an unknown age is never an error.
func (s *underwritingService) applicantAge(ctx context.Context, app Application, now time.Time) int {
	if s.customers == nil {
		return AgeUnknown
	}
	customer, err := s.customers.Get(ctx, app.CustomerID)
	if err != nil {
		return AgeUnknown
	}
	return EstimateAge(customer.DateOfBirth, now)
}
