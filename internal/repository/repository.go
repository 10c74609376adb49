// Package repository defines the record store contracts.
//
// Services depend on these interfaces, never on a concrete database, so tests
// can substitute hand-written fakes and the sqlite package can be swapped out
// without touching business logic.
//
// Every implementation applies the model normalisation functions exactly once,
// at the boundary: records come out of a repository already defaulted.
package repository

import (
	"context"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// ListOptions pages a listing. Zero values mean the implementation default.
type ListOptions struct {
	Limit  int
	Offset int
}

// OpportunityRepository stores opportunity listings.
type OpportunityRepository interface {
	Create(ctx context.Context, o *model.Opportunity) error
	GetByID(ctx context.Context, id string) (*model.Opportunity, error)
	// ListAll returns every listing in storage order. Ranking happens
	// downstream, so there is no paging here.
	ListAll(ctx context.Context) ([]model.Opportunity, error)
	Update(ctx context.Context, o *model.Opportunity) error
	Delete(ctx context.Context, id string) error
	// Version changes whenever any listing is written.
	Version(ctx context.Context) (uint64, error)
}

// UserRepository stores user profiles.
type UserRepository interface {
	// Create inserts a new user. A duplicate email or provider id is a conflict.
	Create(ctx context.Context, u *model.UserProfile) error
	GetByID(ctx context.Context, id string) (*model.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	GetByProviderID(ctx context.Context, providerID string) (*model.UserProfile, error)
	// Update overwrites every mutable field of the stored user.
	Update(ctx context.Context, u *model.UserProfile) error
	List(ctx context.Context, opts ListOptions) ([]model.UserProfile, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.UserProfile, error)
}

// PartnerRepository stores partner organisations, newest first.
type PartnerRepository interface {
	Create(ctx context.Context, p *model.Partner) error
	GetByID(ctx context.Context, id string) (*model.Partner, error)
	List(ctx context.Context) ([]model.Partner, error)
	Update(ctx context.Context, p *model.Partner) error
	Delete(ctx context.Context, id string) error
}

// TeamRepository stores team members, oldest first.
type TeamRepository interface {
	Create(ctx context.Context, m *model.TeamMember) error
	GetByID(ctx context.Context, id string) (*model.TeamMember, error)
	List(ctx context.Context) ([]model.TeamMember, error)
	Update(ctx context.Context, m *model.TeamMember) error
	Delete(ctx context.Context, id string) error
}

// TestimonialRepository stores testimonials, newest first.
type TestimonialRepository interface {
	Create(ctx context.Context, t *model.Testimonial) error
	GetByID(ctx context.Context, id string) (*model.Testimonial, error)
	List(ctx context.Context) ([]model.Testimonial, error)
	Update(ctx context.Context, t *model.Testimonial) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository stores contact form submissions, newest first.
type MessageRepository interface {
	Create(ctx context.Context, m *model.ContactMessage) error
	List(ctx context.Context, opts ListOptions) ([]model.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

// NotificationRepository stores the public notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListSince returns notifications created at or after since, newest first.
	ListSince(ctx context.Context, since time.Time) ([]model.Notification, error)
	// DeleteBefore removes notifications created before cutoff and reports
	// how many went.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsRepository stores the single site settings document.
type SettingsRepository interface {
	// Get returns the saved settings, or all-empty settings if none were saved.
	Get(ctx context.Context) (*model.SiteSettings, error)
	Save(ctx context.Context, s *model.SiteSettings) error
}

// Counter is a named monotonically increasing count.
type Counter interface {
	Increment(ctx context.Context, name string) (int64, error)
	Get(ctx context.Context, name string) (int64, error)
}
