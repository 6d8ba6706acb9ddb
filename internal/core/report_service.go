package core

import (
	"context"
	"fmt"
	"time"

	"github.com/aurorains/insurance-platform/internal/platform/ids"
)

type ReportService interface {
	// Generate builds and persists a report over the current books
	Generate(ctx context.Context) (RiskReport, error)

	Get(ctx context.Context, id string) (RiskReport, error)
	List(ctx context.Context, limit int) ([]RiskReport, error)
}

type reportService struct {
	reports  ReportRepo
	apps     ApplicationRepo
	policies PolicyRepo
	clock    func() time.Time
}

func NewReportService(reports ReportRepo, apps ApplicationRepo, policies PolicyRepo) ReportService {
	return &reportService{
		reports:  reports,
		apps:     apps,
		policies: policies,
		clock:    time.Now,
	}
}

// reportWindowLimit bounds how many applications a single report covers.
const reportWindowLimit = 10000

func (s *reportService) Generate(ctx context.Context) (RiskReport, error) {
	// 1) Load the books
	apps, err := s.apps.List(ctx, ApplicationFilter{}, reportWindowLimit, 0)
	if err != nil {
		return RiskReport{}, fmt.Errorf("load applications: %w", err)
	}
	policies, err := s.policies.All(ctx)
	if err != nil {
		return RiskReport{}, fmt.Errorf("load policies: %w", err)
	}

	// 2) Build the snapshot
	report := BuildRiskReport(ids.New(), apps, policies, s.clock())

	// 3) Persist it. The report is derived data; the stored copy is a
	//    snapshot, never a source of truth.
	if err := s.reports.Create(ctx, report); err != nil {
		return RiskReport{}, err
	}

	return report, nil
}

func (s *reportService) Get(ctx context.Context, id string) (RiskReport, error) {
	if id == "" {
		return RiskReport{}, fmt.Errorf("%w: missing report ID", ErrValidation)
	}
	return s.reports.Get(ctx, id)
}

func (s *reportService) List(ctx context.Context, limit int) ([]RiskReport, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.reports.List(ctx, limit)
}
