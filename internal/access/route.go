package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// View is one screen of the portal. The set is closed.
type View string

const (
	ViewHome          View = "home"
	ViewOpportunities View = "opportunities"
	ViewAbout         View = "about"
	ViewTeam          View = "team"
	ViewContact       View = "contact"
	ViewProfile       View = "profile"
	ViewAdmin         View = "admin"
	ViewRecruiter     View = "recruiter"
)

// ParseView converts a raw string to a View. Empty means home.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return ViewHome, nil
	case ViewHome, ViewOpportunities, ViewAbout, ViewTeam, ViewContact, ViewProfile, ViewAdmin, ViewRecruiter:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Dashboard is the top-level variant of the site a session lands on.
type Dashboard string

const (
	DashboardPublic    Dashboard = "public"
	DashboardRecruiter Dashboard = "recruiter"
	DashboardAdmin     Dashboard = "admin"
)

// DashboardFor maps the session's role to its dashboard. Anonymous sessions
// and job seekers get the public site.
func DashboardFor(s *Session) Dashboard {
	if !s.IsAuthenticated() {
		return DashboardPublic
	}
	switch s.Role {
	case model.RoleAdmin:
		return DashboardAdmin
	case model.RoleRecruiter:
		return DashboardRecruiter
	case model.RoleJobSeeker:
		return DashboardPublic
	}
	return DashboardPublic
}

// HomeView is the view a session starts on.
func HomeView(s *Session) View {
	switch DashboardFor(s) {
	case DashboardAdmin:
		return ViewAdmin
	case DashboardRecruiter:
		return ViewRecruiter
	}
	return ViewHome
}

// CanView reports whether the session may open a view.
func CanView(s *Session, v View) bool {
	switch v {
	case ViewAdmin:
		return s.Is(model.RoleAdmin)
	case ViewRecruiter:
		return s.Is(model.RoleRecruiter) || s.Is(model.RoleAdmin)
	case ViewProfile:
		return s.IsAuthenticated()
	case ViewHome, ViewOpportunities, ViewAbout, ViewTeam, ViewContact:
		return true
	}
	return false
}

// Resolve returns the view the session should actually see when it asks for
// v: the view itself when allowed, otherwise the session's home view.
func Resolve(s *Session, v View) View {
	if CanView(s, v) {
		return v
	}
	return HomeView(s)
}

// Collection is a group of records with its own management rules.
type Collection string

const (
	CollectionOpportunities Collection = "opportunities"
	CollectionUsers         Collection = "users"
	CollectionJobSeekers    Collection = "jobseekers"
	CollectionPartners      Collection = "partners"
	CollectionTeam          Collection = "team"
	CollectionTestimonials  Collection = "testimonials"
	CollectionMessages      Collection = "messages"
	CollectionSettings      Collection = "settings"
)

// CanManage reports whether the session may create, edit or delete records
// of a collection. Recruiters manage opportunities and may browse job
// seekers; everything else is admin only. There is no per-record ownership.
func CanManage(s *Session, c Collection) bool {
	if !s.IsAuthenticated() {
		return false
	}
	switch c {
	case CollectionOpportunities, CollectionJobSeekers:
		return s.Role.IsPrivileged()
	case CollectionUsers, CollectionPartners, CollectionTeam, CollectionTestimonials, CollectionMessages, CollectionSettings:
		return s.Role == model.RoleAdmin
	}
	return false
}

// ErrSelfRoleChange is returned when a user tries to change their own role.
var ErrSelfRoleChange = errors.New("you cannot change your own role")

// ErrNotAdmin is returned when a non-admin tries to change anyone's role.
var ErrNotAdmin = errors.New("only admins can change roles")

// CheckRoleChange validates that actor may set targetID's role.
func CheckRoleChange(actor *Session, targetID string) error {
	if !actor.Is(model.RoleAdmin) {
		return ErrNotAdmin
	}
	if actor.UserID() == targetID {
		return ErrSelfRoleChange
	}
	return nil
}
