package auth

import (
	"context"
	"errors"

	"github.com/suPer8Hu/chat-dashboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password so callers cannot tell which one happened.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the user does not exist so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserFinder looks a user up by exact username. It returns (nil, nil) when
// no such user exists.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type Authenticator struct {
	users UserFinder
}

func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate verifies username/password and returns the sanitized user.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.SanitizedUser, error) {
	u, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Username != username {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	su := u.Sanitize()
	return &su, nil
}
