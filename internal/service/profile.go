package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

// ProfileService manages user profiles: a user's own, and everyone's for admins.
type ProfileService struct {
	users  repository.UserRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewProfileService(users repository.UserRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, now: time.Now, logger: logger}
}

// Me returns the caller's stored profile.
func (s *ProfileService) Me(ctx context.Context, session *access.Session) (*model.UserProfile, error) {
	if !session.IsAuthenticated() || session.UserID() == "" {
		return nil, apperror.Unauthorized("sign in to view your profile")
	}
	u, err := s.users.GetByID(ctx, session.UserID())
	if err != nil {
		return nil, storeErr("getting profile", err)
	}
	return u, nil
}

// UpdateSelf saves the caller's self-service fields. The first time the
// profile passes the completeness check, ProfileCompletedAt is recorded and
// the session moves to Complete; later edits never undo that.
func (s *ProfileService) UpdateSelf(ctx context.Context, session *access.Session, upd model.ProfileUpdate) (*model.UserProfile, error) {
	if err := checkStruct(upd); err != nil {
		return nil, err
	}
	u, err := s.Me(ctx, session)
	if err != nil {
		return nil, err
	}

	upd.ApplyTo(u)
	if u.ProfileCompletedAt == nil && access.IsProfileComplete(u) {
		at := s.now().UTC()
		u.ProfileCompletedAt = &at
		s.logger.Info("profile completed", slog.String("userID", u.ID))
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr("updating profile", err)
	}

	session.Refresh(u)
	return u, nil
}

// ListUsers pages through every user. Admin only.
func (s *ProfileService) ListUsers(ctx context.Context, session *access.Session, opts repository.ListOptions) ([]model.UserProfile, error) {
	if !access.CanManage(session, access.CollectionUsers) {
		return nil, apperror.Forbidden("only admins can list users")
	}
	users, err := s.users.List(ctx, opts)
	if err != nil {
		return nil, storeErr("listing users", err)
	}
	return users, nil
}

// ListJobSeekers is the recruiter's candidate list.
func (s *ProfileService) ListJobSeekers(ctx context.Context, session *access.Session) ([]model.UserProfile, error) {
	if !access.CanManage(session, access.CollectionJobSeekers) {
		return nil, apperror.Forbidden("only admins and recruiters can browse job seekers")
	}
	users, err := s.users.ListByRole(ctx, model.RoleJobSeeker)
	if err != nil {
		return nil, storeErr("listing job seekers", err)
	}
	return users, nil
}

// ChangeRole sets another user's role. The new role takes effect at that
// user's next sign-in.
func (s *ProfileService) ChangeRole(ctx context.Context, session *access.Session, targetID, role string) (*model.UserProfile, error) {
	if err := access.CheckRoleChange(session, targetID); err != nil {
		return nil, apperror.Forbidden(err.Error())
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return nil, apperror.ValidationFailed("role", err.Error())
	}

	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeErr("getting user", err)
	}
	previous := u.Role
	u.Role = r
	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr("updating user role", err)
	}

	s.logger.Info("user role changed",
		slog.String("userID", u.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(r)),
		slog.String("by", session.UserID()),
	)
	return u, nil
}

// Rename sets a user's display name. Admin only.
func (s *ProfileService) Rename(ctx context.Context, session *access.Session, targetID, name string) (*model.UserProfile, error) {
	if !access.CanManage(session, access.CollectionUsers) {
		return nil, apperror.Forbidden("only admins can rename users")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > 100 {
		return nil, apperror.ValidationFailed("name", "name must be 100 characters or less")
	}

	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeErr("getting user", err)
	}
	u.Name = name
	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr("renaming user", err)
	}
	return u, nil
}
