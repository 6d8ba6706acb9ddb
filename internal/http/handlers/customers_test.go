package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorains/insurance-platform/internal/core"
)

// stubCustomerRepo records profile writes.
type stubCustomerRepo struct {
	created []core.Customer
}

func (r *stubCustomerRepo) Create(_ context.Context, c core.Customer) error {
	r.created = append(r.created, c)
	return nil
}

func (r *stubCustomerRepo) Get(context.Context, string) (core.Customer, error) {
	return core.Customer{}, core.ErrCustomerNotFound
}

func (r *stubCustomerRepo) GetByEmail(context.Context, string) (core.Customer, error) {
	return core.Customer{}, core.ErrCustomerNotFound
}

func (r *stubCustomerRepo) List(context.Context, int, int) ([]core.Customer, error) {
	return nil, nil
}

// stubAuthService counts Register calls.
type stubAuthService struct {
	registered int
}

func (s *stubAuthService) Login(context.Context, core.LoginInput) (core.Session, error) {
	return core.Session{}, core.ErrUnauthorized
}

func (s *stubAuthService) Logout(context.Context, string) error { return nil }

func (s *stubAuthService) Authenticate(context.Context, string) (core.Session, error) {
	return core.Session{}, core.ErrUnauthorized
}

func (s *stubAuthService) Register(_ context.Context, email, _ string, role core.Role, customerID string) (core.Credential, error) {
	s.registered++
	return core.Credential{Email: email, Role: role, CustomerID: customerID}, nil
}

func newCustomerHandlerForTest() (*CustomerHandler, *stubCustomerRepo, *stubAuthService) {
	customers := &stubCustomerRepo{}
	auth := &stubAuthService{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCustomerHandler(customers, auth, log), customers, auth
}

func signUp(h *CustomerHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)
	return rec
}

func TestSignUpCreatesProfileAndLogin(t *testing.T) {
	h, customers, auth := newCustomerHandlerForTest()

	rec := signUp(h, `{
		"first_name": "Thandi",
		"last_name": "Dlamini",
		"email": "thandi@example.com",
		"date_of_birth": "1996-01-15",
		"password": "long-enough-secret"
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, customers.created, 1)
	assert.Equal(t, "thandi@example.com", customers.created[0].Email)
	assert.Equal(t, 1, auth.registered)
}

func TestSignUpRejectsShortPasswordBeforeWritingProfile(t *testing.T) {
	h, customers, auth := newCustomerHandlerForTest()

	rec := signUp(h, `{
		"first_name": "Thandi",
		"last_name": "Dlamini",
		"email": "thandi@example.com",
		"password": "short"
	}`)

	// The profile must not be written: a stranded customer's unique email
	// would turn every retry into a conflict.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, customers.created)
	assert.Zero(t, auth.registered)
}

func TestSignUpRejectsInvalidDetails(t *testing.T) {
	h, customers, _ := newCustomerHandlerForTest()

	rec := signUp(h, `{"first_name": "Thandi", "email": "not-an-email", "password": "long-enough-secret"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, customers.created)
}
