package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

// DefaultTokenTTL is how long an identity token stays valid after login.
const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid identity token")

// IdentityClaims is the payload of the identity token: the sanitized user
// plus the registered expiry claims. It never carries the password hash.
type IdentityClaims struct {
	UserID   uint64      `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *IdentityClaims) Identity() models.SanitizedUser {
	return models.SanitizedUser{
		ID:       c.UserID,
		Username: c.Username,
		Name:     c.Name,
		Role:     c.Role,
	}
}

// SignIdentity issues an HS256 token for u valid for ttl.
func SignIdentity(u models.SanitizedUser, secret string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := IdentityClaims{
		UserID:   u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseIdentity validates the token signature and expiry and returns the
// identity it carries. The store is not consulted, so a role change only
// shows up after the user logs in again.
func ParseIdentity(token, secret string) (*models.SanitizedUser, error) {
	var claims IdentityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	id := claims.Identity()
	return &id, nil
}
