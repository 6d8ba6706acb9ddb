package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// In-memory repository fakes shared by the service tests.

type fakeCustomerRepo struct {
	mu    sync.Mutex
	items map[string]Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{items: map[string]Customer{}}
}

func (r *fakeCustomerRepo) Create(_ context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Email == c.Email {
			return ErrConflict
		}
	}
	r.items[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) Get(_ context.Context, id string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Email == email {
			return c, nil
		}
	}
	return Customer{}, ErrCustomerNotFound
}

func (r *fakeCustomerRepo) List(_ context.Context, _, _ int) ([]Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Customer, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	return out, nil
}

type fakeProductRepo struct {
	items map[string]Product // by slug
}

func newFakeProductRepo(products ...Product) *fakeProductRepo {
	r := &fakeProductRepo{items: map[string]Product{}}
	for _, p := range products {
		r.items[p.Slug] = p
	}
	return r
}

func (r *fakeProductRepo) List(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (Product, error) {
	p, ok := r.items[slug]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (Product, error) {
	for _, p := range r.items {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

func (r *fakeProductRepo) UpsertBySlug(_ context.Context, p Product) error {
	r.items[p.Slug] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	for slug, p := range r.items {
		if p.ID == id {
			delete(r.items, slug)
			return nil
		}
	}
	return ErrProductNotFound
}

type fakeApplicationRepo struct {
	mu    sync.Mutex
	items map[string]Application
}

func newFakeApplicationRepo(apps ...Application) *fakeApplicationRepo {
	r := &fakeApplicationRepo{items: map[string]Application{}}
	for _, a := range apps {
		r.items[a.ID] = a
	}
	return r
}

func (r *fakeApplicationRepo) Create(_ context.Context, app Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[app.ID]; ok {
		return ErrConflict
	}
	r.items[app.ID] = app
	return nil
}

func (r *fakeApplicationRepo) Get(_ context.Context, id string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return Application{}, ErrApplicationNotFound
	}
	return app, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id string, status ApplicationStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return ErrApplicationNotFound
	}
	app.Status = status
	app.UpdatedAt = updatedAt
	r.items[id] = app
	return nil
}

func (r *fakeApplicationRepo) List(_ context.Context, filter ApplicationFilter, _, _ int) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Application
	for _, app := range r.items {
		if filter.CustomerID != "" && app.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (r *fakeApplicationRepo) MarkAssessed(_ context.Context, id string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return ErrApplicationNotFound
	}
	app.Assessed = true
	app.UpdatedAt = updatedAt
	r.items[id] = app
	return nil
}

func (r *fakeApplicationRepo) SetPolicyID(_ context.Context, id, policyID string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return ErrApplicationNotFound
	}
	app.PolicyID = policyID
	app.UpdatedAt = updatedAt
	r.items[id] = app
	return nil
}

func (r *fakeApplicationRepo) FindByStatus(ctx context.Context, status ApplicationStatus, limit int) ([]Application, error) {
	return r.findOldestFirst(func(app Application) bool {
		return app.Status == status
	}, limit)
}

func (r *fakeApplicationRepo) FindAwaitingAssessment(_ context.Context, limit int) ([]Application, error) {
	return r.findOldestFirst(func(app Application) bool {
		return app.Status == ApplicationStatusPending && !app.Assessed
	}, limit)
}

func (r *fakeApplicationRepo) FindAwaitingIssuance(_ context.Context, limit int) ([]Application, error) {
	return r.findOldestFirst(func(app Application) bool {
		return app.Status == ApplicationStatusApproved && app.PolicyID == ""
	}, limit)
}

func (r *fakeApplicationRepo) findOldestFirst(keep func(Application) bool, limit int) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Application
	for _, app := range r.items {
		if keep(app) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAssessmentRepo struct {
	mu    sync.Mutex
	items map[string]RiskAssessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{items: map[string]RiskAssessment{}}
}

func (r *fakeAssessmentRepo) Create(_ context.Context, a RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ApplicationID == a.ApplicationID {
			return ErrAssessmentExists
		}
	}
	r.items[a.ID] = a
	return nil
}

func (r *fakeAssessmentRepo) Get(_ context.Context, id string) (RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return RiskAssessment{}, ErrAssessmentNotFound
	}
	return a, nil
}

func (r *fakeAssessmentRepo) GetByApplicationID(_ context.Context, appID string) (RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.ApplicationID == appID {
			return a, nil
		}
	}
	return RiskAssessment{}, ErrAssessmentNotFound
}

func (r *fakeAssessmentRepo) FindByResult(_ context.Context, result AssessmentResult, limit int) ([]RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RiskAssessment
	for _, a := range r.items {
		if a.Result == result {
			out = append(out, a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAssessmentRepo) All(_ context.Context) ([]RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RiskAssessment, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, a)
	}
	return out, nil
}

type fakeDecisionRepo struct {
	mu    sync.Mutex
	items map[string]UnderwritingDecision
}

func newFakeDecisionRepo() *fakeDecisionRepo {
	return &fakeDecisionRepo{items: map[string]UnderwritingDecision{}}
}

func (r *fakeDecisionRepo) Create(_ context.Context, d UnderwritingDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ApplicationID == d.ApplicationID {
			return ErrDecisionExists
		}
	}
	r.items[d.ID] = d
	return nil
}

func (r *fakeDecisionRepo) Get(_ context.Context, id string) (UnderwritingDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return UnderwritingDecision{}, ErrDecisionNotFound
	}
	return d, nil
}

func (r *fakeDecisionRepo) GetByApplicationID(_ context.Context, appID string) (UnderwritingDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.ApplicationID == appID {
			return d, nil
		}
	}
	return UnderwritingDecision{}, ErrDecisionNotFound
}

type fakePolicyRepo struct {
	mu      sync.Mutex
	items   map[string]Policy
	counter int
}

func newFakePolicyRepo() *fakePolicyRepo {
	return &fakePolicyRepo{items: map[string]Policy{}}
}

func (r *fakePolicyRepo) Create(_ context.Context, p Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ApplicationID == p.ApplicationID {
			return ErrPolicyExists
		}
	}
	r.items[p.ID] = p
	return nil
}

func (r *fakePolicyRepo) Get(_ context.Context, id string) (Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return Policy{}, ErrPolicyNotFound
	}
	return p, nil
}

func (r *fakePolicyRepo) GetByNumber(_ context.Context, number string) (Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Number == number {
			return p, nil
		}
	}
	return Policy{}, ErrPolicyNotFound
}

func (r *fakePolicyRepo) GetByApplicationID(_ context.Context, appID string) (Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ApplicationID == appID {
			return p, nil
		}
	}
	return Policy{}, ErrPolicyNotFound
}

func (r *fakePolicyRepo) List(_ context.Context, filter PolicyFilter, _, _ int) ([]Policy, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Policy
	for _, p := range r.items {
		if filter.CustomerID != "" && p.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePolicyRepo) NextPolicyNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return fmt.Sprintf("POL-2026-%06d", r.counter), nil
}

func (r *fakePolicyRepo) All(_ context.Context) ([]Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Policy, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	return out, nil
}

type fakePaymentRepo struct {
	mu    sync.Mutex
	items map[string]PremiumPayment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{items: map[string]PremiumPayment{}}
}

func (r *fakePaymentRepo) Create(_ context.Context, p PremiumPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return ErrConflict
	}
	r.items[p.ID] = p
	return nil
}

func (r *fakePaymentRepo) Get(_ context.Context, id string) (PremiumPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return PremiumPayment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) ListByPolicyID(_ context.Context, policyID string) ([]PremiumPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PremiumPayment
	for _, p := range r.items {
		if p.PolicyID == policyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p PremiumPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return ErrPaymentNotFound
	}
	r.items[p.ID] = p
	return nil
}

type fakeReportRepo struct {
	mu    sync.Mutex
	items map[string]RiskReport
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{items: map[string]RiskReport{}}
}

func (r *fakeReportRepo) Create(_ context.Context, report RiskReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[report.ID] = report
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, id string) (RiskReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.items[id]
	if !ok {
		return RiskReport{}, ErrReportNotFound
	}
	return report, nil
}

func (r *fakeReportRepo) List(_ context.Context, limit int) ([]RiskReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RiskReport, 0, len(r.items))
	for _, report := range r.items {
		out = append(out, report)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCredentialRepo struct {
	mu    sync.Mutex
	items map[string]Credential // by email
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{items: map[string]Credential{}}
}

func (r *fakeCredentialRepo) Create(_ context.Context, c Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.Email]; ok {
		return ErrCredentialExists
	}
	r.items[c.Email] = c
	return nil
}

func (r *fakeCredentialRepo) GetByEmail(_ context.Context, email string) (Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[email]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return c, nil
}

type fakeSessionStore struct {
	mu    sync.Mutex
	items map[string]Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{items: map[string]Session{}}
}

func (s *fakeSessionStore) Put(_ context.Context, session Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Token] = session
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}
