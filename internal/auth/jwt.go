// Package auth signs people in and tells the rest of the portal who they are.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. User visits /auth/google/login → redirected to Google
//     (or posts an email and password to /auth/login)
//  2. Google calls back /auth/google/callback with a code
//  3. Server exchanges the code for the Google profile, upserts the user
//  4. Server issues a JWT carrying the user id and role, stored in an
//     HttpOnly cookie
//  5. On later requests the middleware validates the cookie and puts the
//     resolved access.Identity in the request context
//
// The role is baked into the token when the session starts. An admin changing
// someone's role takes effect at that user's next sign-in.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

const (
	issuer = "kandukur-portal"

	// SessionTTL is how long a sign-in lasts. There are no refresh tokens;
	// users sign in again afterwards.
	SessionTTL = 24 * time.Hour
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: "sub" is the user id, "role" the role held when
// the session began.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate issues a session token valid for SessionTTL.
func (s *TokenService) Generate(userID string, role model.Role) (string, error) {
	return s.GenerateWithDuration(userID, role, SessionTTL)
}

// GenerateWithDuration is Generate with an explicit lifetime. Tests use a
// negative duration to produce expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, role model.Role, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the identity in it.
// A token with a role outside the known set resolves to a job seeker.
func (s *TokenService) Validate(tokenStr string) (access.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// reject alg=none and RSA/HMAC confusion
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return access.Identity{}, fmt.Errorf("auth: token expired")
		}
		return access.Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return access.Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return access.Identity{}, fmt.Errorf("auth: token has no subject")
	}

	role, err := model.ParseRole(c.Role)
	if err != nil {
		role = model.RoleJobSeeker
	}

	return access.Identity{UserID: c.Subject, Role: role}, nil
}
