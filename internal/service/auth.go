// Package service holds the portal's business rules. It sits between the
// HTTP handlers and the record store:
//
//	handler (HTTP) → service (rules, access checks) → repository (DB)
//
// Services never read requests or write responses. Every operation that acts
// on behalf of a caller takes the caller's *access.Session explicitly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/auth"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

// AdminCheck reports whether an email belongs to a bootstrap administrator.
type AdminCheck func(email string) bool

// AuthService signs users in and settles their sessions.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	isAdmin   AdminCheck
	identity  access.IdentityProvider
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	isAdmin AdminCheck,
	logger *slog.Logger,
) *AuthService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		isAdmin:   isAdmin,
		identity:  auth.ContextIdentity,
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user with the token to set as a cookie.
type AuthResult struct {
	User  *model.UserProfile
	Token string
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var errBadCredentials = apperror.Unauthorized("invalid email or password")

// SignInOAuth handles the identity provider callback. The user is found by
// provider id, then by email (linking an existing password account), and
// created on first sign-in. New users are job seekers unless their email is
// a bootstrap admin address.
func (s *AuthService) SignInOAuth(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	if gu == nil || gu.Subject == "" {
		return nil, fmt.Errorf("service/auth: identity provider returned no user")
	}
	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" || !gu.EmailVerified {
		return nil, apperror.Unauthorized("your Google account has no verified email address")
	}

	user, err := s.users.GetByProviderID(ctx, gu.Subject)
	if errors.Is(err, apperror.ErrNotFound) {
		user, err = s.users.GetByEmail(ctx, email)
	}

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.UserProfile{
			Email:      email,
			Name:       gu.Name,
			AvatarURL:  gu.Picture,
			ProviderID: gu.Subject,
			Role:       model.RoleJobSeeker,
		}
		if s.isAdmin(email) {
			user.Role = model.RoleAdmin
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, storeErr("service/auth: creating user", err)
		}
		s.logger.Info("user registered via Google",
			slog.String("userID", user.ID),
			slog.String("role", string(user.Role)),
		)

	case err != nil:
		return nil, storeErr("service/auth: looking up user", err)

	default:
		changed := false
		if user.ProviderID == "" {
			user.ProviderID = gu.Subject
			changed = true
		}
		if user.Name == "" && gu.Name != "" {
			user.Name = gu.Name
			changed = true
		}
		if gu.Picture != "" && user.AvatarURL != gu.Picture {
			user.AvatarURL = gu.Picture
			changed = true
		}
		// admins listed in config are promoted, never demoted
		if user.Role != model.RoleAdmin && s.isAdmin(email) {
			user.Role = model.RoleAdmin
			changed = true
		}
		if changed {
			if err := s.users.Update(ctx, user); err != nil {
				return nil, storeErr("service/auth: updating user", err)
			}
		}
	}

	s.logger.Info("user authenticated via Google", slog.String("userID", user.ID))
	return s.issue(user)
}

// Register creates an email/password account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := auth.CheckStrength(in.Password); err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user := &model.UserProfile{
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         model.RoleJobSeeker,
	}
	if s.isAdmin(email) {
		user.Role = model.RoleAdmin
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "an account with this email already exists", Field: "email"}
		}
		return nil, storeErr("service/auth: creating user", err)
	}

	s.logger.Info("user registered with password", slog.String("userID", user.ID))
	return s.issue(user)
}

// SignInPassword checks an email/password pair. Unknown emails and wrong
// passwords get the same answer.
func (s *AuthService) SignInPassword(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, storeErr("service/auth: looking up user", err)
	}
	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized("this account signs in with Google")
	}
	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		s.logger.Warn("failed password sign-in", slog.String("userID", user.ID))
		return nil, errBadCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *model.UserProfile) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Session settles the caller's session from the request context. It never
// fails: an unknown caller is anonymous and an unreadable profile leaves the
// session incomplete.
func (s *AuthService) Session(ctx context.Context) *access.Session {
	return access.Establish(ctx, s.identity, s)
}

// GetProfile makes AuthService the access.ProfileReader for Establish.
func (s *AuthService) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to load profile for session",
				slog.String("userID", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return u, nil
}
