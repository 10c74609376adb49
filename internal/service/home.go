package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
)

// Home is everything the landing page shows in one payload.
type Home struct {
	Opportunities []Listing            `json:"opportunities"`
	Partners      []model.Partner      `json:"partners"`
	Testimonials  []model.Testimonial  `json:"testimonials"`
	Notifications []model.Notification `json:"notifications"`
	Settings      *model.SiteSettings  `json:"settings"`
	Visitors      int64                `json:"visitors"`
}

// HomeService assembles the landing page from the other services.
type HomeService struct {
	opportunities *OpportunityService
	content       *ContentService
	notifications *NotificationService
	settings      *SettingsService
	visitors      *VisitorService
}

func NewHomeService(
	opportunities *OpportunityService,
	content *ContentService,
	notifications *NotificationService,
	settings *SettingsService,
	visitors *VisitorService,
) *HomeService {
	return &HomeService{
		opportunities: opportunities,
		content:       content,
		notifications: notifications,
		settings:      settings,
		visitors:      visitors,
	}
}

// Load reads every section concurrently. Any failing section fails the whole
// page; the visitor count never does.
func (s *HomeService) Load(ctx context.Context) (*Home, error) {
	var h Home
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		preview, err := s.opportunities.Preview(ctx, ranking.DefaultCriteria())
		if err != nil {
			return err
		}
		h.Opportunities = s.opportunities.Present(preview)
		return nil
	})
	g.Go(func() error {
		var err error
		h.Partners, err = s.content.ListPartners(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		h.Testimonials, err = s.content.ListTestimonials(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		h.Notifications, err = s.notifications.Recent(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		h.Settings, err = s.settings.Get(ctx)
		return err
	})
	g.Go(func() error {
		h.Visitors = s.visitors.Count(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &h, nil
}
