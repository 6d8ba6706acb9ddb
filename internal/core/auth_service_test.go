package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServiceForTest(ttl time.Duration) (*authService, *fakeCredentialRepo, *fakeSessionStore) {
	credentials := newFakeCredentialRepo()
	sessions := newFakeSessionStore()
	svc := NewAuthService(credentials, sessions, ttl).(*authService)
	svc.clock = func() time.Time { return scoringNow }
	return svc, credentials, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthServiceForTest(30 * time.Minute)

	cred, err := svc.Register(ctx, "nia@example.com", "s3cret-pass", RoleCustomer, "cust-1")
	require.NoError(t, err)
	assert.NotEmpty(t, cred.ID)
	assert.Equal(t, RoleCustomer, cred.Role)
	assert.Equal(t, "cust-1", cred.CustomerID)
	assert.NotEqual(t, "s3cret-pass", cred.PasswordHash)

	session, err := svc.Login(ctx, LoginInput{Email: "nia@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, cred.ID, session.UserID)
	assert.Equal(t, RoleCustomer, session.Role)
	assert.Equal(t, "cust-1", session.CustomerID)
	assert.Equal(t, scoringNow.Add(30*time.Minute), session.ExpiresAt)

	got, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthServiceForTest(time.Minute)

	_, err := svc.Register(ctx, "nia@example.com", "s3cret-pass", RoleCustomer, "cust-1")
	require.NoError(t, err)

	// Unknown email and wrong password produce the same error.
	_, err = svc.Login(ctx, LoginInput{Email: "stranger@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nia@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nia@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthServiceForTest(time.Minute)

	_, err := svc.Register(ctx, "not-an-email", "s3cret-pass", RoleCustomer, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "nia@example.com", "short", RoleCustomer, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "nia@example.com", "s3cret-pass", Role("superuser"), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "nia@example.com", "s3cret-pass", RoleAdmin, "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "nia@example.com", "other-pass99", RoleAdmin, "")
	assert.ErrorIs(t, err, ErrCredentialExists)
}

func TestAuthenticateExpiry(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newAuthServiceForTest(10 * time.Minute)

	_, err := svc.Register(ctx, "nia@example.com", "s3cret-pass", RoleUnderwriter, "")
	require.NoError(t, err)
	session, err := svc.Login(ctx, LoginInput{Email: "nia@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	svc.clock = func() time.Time { return scoringNow.Add(11 * time.Minute) }
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The stale session is evicted on the failed check.
	_, err = sessions.Get(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthServiceForTest(time.Minute)

	_, err := svc.Register(ctx, "nia@example.com", "s3cret-pass", RoleCustomer, "cust-1")
	require.NoError(t, err)
	session, err := svc.Login(ctx, LoginInput{Email: "nia@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, svc.Logout(ctx, ""), ErrValidation)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	svc, _, _ := newAuthServiceForTest(time.Minute)
	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
