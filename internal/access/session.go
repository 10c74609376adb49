package access

import (
	"context"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// State is where a session stands with respect to sign-in and profile
// completeness. Role is tracked separately; the two are orthogonal.
//
//	Anonymous ──sign-in──► Incomplete ──profile filled──► Complete
//	    │                                                    ▲
//	    └───────────sign-in, profile already complete────────┘
//
// There is no edge back from Complete to Incomplete.
type State string

const (
	StateAnonymous  State = "anonymous"
	StateIncomplete State = "incomplete"
	StateComplete   State = "complete"
)

// Identity is what the identity provider resolved for the current caller:
// who they are and the role they held when the session began.
type Identity struct {
	UserID string
	Role   model.Role
}

// IdentityProvider resolves the caller's identity. An error means the caller
// is not signed in, for whatever reason.
type IdentityProvider interface {
	Identify(ctx context.Context) (Identity, error)
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func(ctx context.Context) (Identity, error)

func (f IdentityFunc) Identify(ctx context.Context) (Identity, error) { return f(ctx) }

// ProfileReader loads a user profile from the record store.
type ProfileReader interface {
	GetProfile(ctx context.Context, id string) (*model.UserProfile, error)
}

// Session is the explicit per-caller auth state handed to every decision.
type Session struct {
	State   State
	Role    model.Role
	Profile *model.UserProfile

	// userID survives a failed profile read.
	userID string
}

// Anonymous returns a signed-out session.
func Anonymous() *Session {
	return &Session{State: StateAnonymous, Role: model.RoleJobSeeker}
}

// Establish settles a session from the collaborators.
//
//   - identity fails           → Anonymous
//   - profile read fails       → Incomplete, job seeker role, no profile
//     (the user id is kept so the caller is still signed in)
//   - otherwise                → Complete or Incomplete by the profile
//
// The role is taken from the identity as it was when the session began, so a
// role change made by an admin only shows up in the user's next session.
func Establish(ctx context.Context, identity IdentityProvider, profiles ProfileReader) *Session {
	id, err := identity.Identify(ctx)
	if err != nil || id.UserID == "" {
		return Anonymous()
	}

	profile, err := profiles.GetProfile(ctx, id.UserID)
	if err != nil || profile == nil {
		return &Session{State: StateIncomplete, Role: model.RoleJobSeeker, userID: id.UserID}
	}

	role := id.Role
	if role == "" {
		role = profile.Role
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		role = model.RoleJobSeeker
	}

	s := &Session{State: StateIncomplete, Role: role, Profile: profile, userID: id.UserID}
	s.Refresh(profile)
	return s
}

// ForProfile builds a signed-in session directly from a resolved profile.
func ForProfile(profile *model.UserProfile) *Session {
	if profile == nil {
		return Anonymous()
	}
	s := &Session{State: StateIncomplete, Role: profile.Role, Profile: profile, userID: profile.ID}
	s.Refresh(profile)
	return s
}

// Refresh moves an Incomplete session to Complete once the profile passes the
// completeness check, or was recorded as complete before. It never moves a
// session backwards and does nothing for an anonymous session.
func (s *Session) Refresh(profile *model.UserProfile) {
	if s.State == StateAnonymous || profile == nil {
		return
	}
	s.Profile = profile
	if s.State == StateIncomplete && (profile.ProfileCompletedAt != nil || IsProfileComplete(profile)) {
		s.State = StateComplete
	}
}

// IsAuthenticated reports whether the session is signed in.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.State != StateAnonymous
}

// UserID is the signed-in user's id, or "" for anonymous sessions.
func (s *Session) UserID() string {
	switch {
	case s == nil || s.State == StateAnonymous:
		return ""
	case s.userID != "":
		return s.userID
	case s.Profile != nil:
		return s.Profile.ID
	}
	return ""
}

// Is reports whether the session is signed in with the given role.
func (s *Session) Is(role model.Role) bool {
	return s.IsAuthenticated() && s.Role == role
}
