package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aurorains/insurance-platform/internal/platform/ids"
)

// MinPasswordLength is the shortest password Register accepts. Callers that
// persist other records alongside a credential should check it up front.
const MinPasswordLength = 8

type Role string

const (
	RoleCustomer    Role = "customer"
	RoleUnderwriter Role = "underwriter"
	RoleAdmin       Role = "admin"
)

// Credential is a stored login. Passwords are held only as bcrypt hashes in
// the credential store; there are no literal credential lists in code.
type Credential struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CustomerID   string    `json:"customer_id,omitempty"` // set for customer logins
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the explicit server-side login state: an opaque token mapped to
// the authenticated principal, with a TTL. Replaces ambient client-held
// auth state.
type Session struct {
	Token      string    `json:"token"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	CustomerID string    `json:"customer_id,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type CredentialRepo interface {
	Create(ctx context.Context, c Credential) error
	GetByEmail(ctx context.Context, email string) (Credential, error)
}

// SessionStore holds live sessions. Implementations: Redis (production) and
// in-memory (dev/tests).
type SessionStore interface {
	Put(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (Session, error)
	Register(ctx context.Context, email, password string, role Role, customerID string) (Credential, error)
}

type authService struct {
	credentials CredentialRepo
	sessions    SessionStore
	ttl         time.Duration
	clock       func() time.Time
}

func NewAuthService(credentials CredentialRepo, sessions SessionStore, ttl time.Duration) AuthService {
	return &authService{
		credentials: credentials,
		sessions:    sessions,
		ttl:         ttl,
		clock:       time.Now,
	}
}

func (in LoginInput) Validate() error {
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (Session, error) {
	// 1) Validate input
	if err := in.Validate(); err != nil {
		return Session{}, err
	}

	// 2) Look up the credential. Unknown email and wrong password map to
	//    the same error so responses do not leak which one failed.
	cred, err := s.credentials.GetByEmail(ctx, in.Email)
	if err != nil {
		return Session{}, ErrBadCredentials
	}

	// 3) Verify password
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(in.Password)) != nil {
		return Session{}, ErrBadCredentials
	}

	// 4) Issue a session
	session := Session{
		Token:      ids.New(),
		UserID:     cred.ID,
		Email:      cred.Email,
		Role:       cred.Role,
		CustomerID: cred.CustomerID,
		ExpiresAt:  s.clock().Add(s.ttl),
	}
	if err := s.sessions.Put(ctx, session, s.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: missing session token", ErrValidation)
	}
	return s.sessions.Delete(ctx, token)
}

func (s *authService) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return Session{}, ErrUnauthorized
	}
	if s.clock().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return Session{}, ErrUnauthorized
	}
	return session, nil
}

func (s *authService) Register(ctx context.Context, email, password string, role Role, customerID string) (Credential, error) {
	if email == "" || !emailRegex.MatchString(email) {
		return Credential{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return Credential{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	switch role {
	case RoleCustomer, RoleUnderwriter, RoleAdmin:
	default:
		return Credential{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Credential{}, fmt.Errorf("hash password: %w", err)
	}

	cred := Credential{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CustomerID:   customerID,
		CreatedAt:    s.clock(),
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return Credential{}, err
	}
	return cred, nil
}

var (
	ErrBadCredentials   = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrCredentialExists = fmt.Errorf("%w: credential already exists for email", ErrConflict)
	ErrSessionNotFound  = fmt.Errorf("%w: session not found", ErrNotFound)
)
