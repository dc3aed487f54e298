package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

const testSecret = "test-secret"

type mapFinder struct {
	users map[string]*models.User
	err   error
}

func (f *mapFinder) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func newFinder(t *testing.T) *mapFinder {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	return &mapFinder{users: map[string]*models.User{
		"alice": {ID: 7, Username: "alice", Password: hash, Name: "Alice", Role: models.RoleAdmin},
	}}
}

func TestAuthenticateSuccessStripsPassword(t *testing.T) {
	a := NewAuthenticator(newFinder(t))

	u, err := a.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.SanitizedUser{ID: 7, Username: "alice", Name: "Alice", Role: models.RoleAdmin}, *u)
}

func TestAuthenticateFailuresLookTheSame(t *testing.T) {
	a := NewAuthenticator(newFinder(t))

	_, wrongPw := a.Authenticate(context.Background(), "alice", "nope")
	_, unknown := a.Authenticate(context.Background(), "bob", "s3cret")
	_, caseDiff := a.Authenticate(context.Background(), "Alice", "s3cret")

	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.ErrorIs(t, caseDiff, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestAuthenticateStoreErrorPassesThrough(t *testing.T) {
	boom := errors.New("db down")
	a := NewAuthenticator(&mapFinder{err: boom})

	_, err := a.Authenticate(context.Background(), "alice", "s3cret")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := HashPassword("pw")
	require.NoError(t, err)
	h2, err := HashPassword("pw")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("pw", h1))
	assert.False(t, CheckPassword("other", h1))
}

func TestIdentityTokenRoundTrip(t *testing.T) {
	in := models.SanitizedUser{ID: 3, Username: "bob", Name: "Bob", Role: models.RoleUser}

	tok, exp, err := SignIdentity(in, testSecret, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), exp, 5*time.Second)

	out, err := ParseIdentity(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestParseIdentityRejectsBadTokens(t *testing.T) {
	u := models.SanitizedUser{ID: 3, Username: "bob", Name: "Bob", Role: models.RoleUser}
	good, _, err := SignIdentity(u, testSecret, time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		UserID: 3, Username: "bob", Name: "Bob", Role: models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		UserID: 3, Username: "bob", Role: models.RoleUser,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		UserID: 3, Username: "bob", Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret": {good, "other"},
		"expired":      {expired, testSecret},
		"no expiry":    {noExp, testSecret},
		"unknown role": {badRole, testSecret},
		"garbage":      {"not-a-token", testSecret},
		"empty":        {"", testSecret},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseIdentity(tc.token, tc.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

type foldingFinder struct{ u *models.User }

func (f foldingFinder) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if strings.EqualFold(username, f.u.Username) {
		return f.u, nil
	}
	return nil, nil
}

func TestAuthenticateRejectsCaseFoldedMatch(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	a := NewAuthenticator(foldingFinder{u: &models.User{ID: 1, Username: "alice", Password: hash, Role: models.RoleUser}})

	_, err = a.Authenticate(context.Background(), "ALICE", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(context.Background(), "alice", "s3cret")
	assert.NoError(t, err)
}
