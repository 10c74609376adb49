package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/events"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

// OpportunityInput is the admin/recruiter form for posting or editing an
// opportunity.
type OpportunityInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Company      string   `json:"company" validate:"max=200"`
	Category     string   `json:"category" validate:"max=30"`
	Location     string   `json:"location" validate:"max=200"`
	WorkMode     string   `json:"workMode" validate:"max=20"`
	Deadline     string   `json:"deadline" validate:"required,datetime=2006-01-02"`
	Status       string   `json:"status" validate:"omitempty,oneof=open closed"`
	Stipend      string   `json:"stipend" validate:"max=100"`
	StipendValue int      `json:"stipendValue" validate:"min=0"`
	Description  string   `json:"description" validate:"max=5000"`
	Requirements []string `json:"requirements" validate:"max=30,dive,max=100"`
	Link         string   `json:"link" validate:"omitempty,url"`
	Featured     bool     `json:"featured"`
}

// apply copies the form onto o, rejecting unknown enum values.
func (in OpportunityInput) apply(o *model.Opportunity) error {
	if strings.TrimSpace(in.Category) != "" {
		c, err := model.ParseCategory(in.Category)
		if err != nil {
			return apperror.ValidationFailed("category", err.Error())
		}
		o.Category = c
	} else {
		o.Category = ""
	}
	if strings.TrimSpace(in.WorkMode) != "" {
		m, err := model.ParseWorkMode(in.WorkMode)
		if err != nil {
			return apperror.ValidationFailed("workMode", err.Error())
		}
		o.WorkMode = m
	} else {
		o.WorkMode = ""
	}

	o.Title = in.Title
	o.Company = in.Company
	o.Location = in.Location
	o.Deadline = in.Deadline
	o.Status = model.Status(in.Status)
	o.Stipend = in.Stipend
	o.StipendValue = in.StipendValue
	o.Description = in.Description
	o.Requirements = in.Requirements
	o.Link = in.Link
	o.Featured = in.Featured
	return nil
}

// OpportunityService lists, ranks, edits and gates opportunities.
type OpportunityService struct {
	repo          repository.OpportunityRepository
	notifications repository.NotificationRepository
	events        events.Publisher
	engine        *ranking.Engine
	logger        *slog.Logger
}

func NewOpportunityService(
	repo repository.OpportunityRepository,
	notifications repository.NotificationRepository,
	publisher events.Publisher,
	engine *ranking.Engine,
	logger *slog.Logger,
) *OpportunityService {
	return &OpportunityService{
		repo:          repo,
		notifications: notifications,
		events:        publisher,
		engine:        engine,
		logger:        logger,
	}
}

// List returns the opportunities matching c in display order.
func (s *OpportunityService) List(ctx context.Context, c ranking.Criteria) ([]model.Opportunity, error) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		return nil, storeErr("reading opportunities version", err)
	}
	if ranked, ok := s.engine.Lookup(version, c); ok {
		return ranked, nil
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load opportunities", slog.String("error", err.Error()))
		return nil, storeErr("listing opportunities", err)
	}

	return s.engine.RankVersion(version, records, c), nil
}

// Listing is an opportunity plus the flags the board renders from.
type Listing struct {
	model.Opportunity
	Closed bool `json:"closed"`
}

// Present attaches the closed flag as of today to each record.
func (s *OpportunityService) Present(records []model.Opportunity) []Listing {
	out := make([]Listing, len(records))
	for i := range records {
		out[i] = Listing{Opportunity: records[i], Closed: s.IsClosed(&records[i])}
	}
	return out
}

// Preview is the home page teaser: the first PreviewSize of the ranking for c.
func (s *OpportunityService) Preview(ctx context.Context, c ranking.Criteria) ([]model.Opportunity, error) {
	ranked, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return ranking.Truncate(ranked, ranking.PreviewSize), nil
}

func (s *OpportunityService) Get(ctx context.Context, id string) (*model.Opportunity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "opportunity ID is required")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("getting opportunity", err)
	}
	return o, nil
}

// IsClosed reports whether o is effectively closed today.
func (s *OpportunityService) IsClosed(o *model.Opportunity) bool {
	return s.engine.IsClosed(o)
}

// Create posts a new opportunity and announces it in the notifications feed.
func (s *OpportunityService) Create(ctx context.Context, session *access.Session, in OpportunityInput) (*model.Opportunity, error) {
	if !access.CanManage(session, access.CollectionOpportunities) {
		return nil, apperror.Forbidden("only admins and recruiters can post opportunities")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	o := &model.Opportunity{}
	if err := in.apply(o); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.logger.Error("failed to create opportunity",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, storeErr("creating opportunity", err)
	}

	s.logger.Info("opportunity created",
		slog.String("id", o.ID),
		slog.String("title", o.Title),
		slog.String("by", session.UserID()),
	)

	// the listing exists now; the feed entry and event are best effort
	n := &model.Notification{
		Title:         fmt.Sprintf("New %s: %s", o.Category, o.Title),
		Type:          model.NotificationNewOpportunity,
		OpportunityID: o.ID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn("failed to create notification", slog.String("opportunityID", o.ID), slog.String("error", err.Error()))
	}
	s.publish(ctx, events.ChannelOpportunityPosted, o)

	return o, nil
}

// Update replaces the editable fields of an existing opportunity.
func (s *OpportunityService) Update(ctx context.Context, session *access.Session, id string, in OpportunityInput) (*model.Opportunity, error) {
	if !access.CanManage(session, access.CollectionOpportunities) {
		return nil, apperror.Forbidden("only admins and recruiters can edit opportunities")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(o); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, storeErr("updating opportunity", err)
	}

	s.logger.Info("opportunity updated", slog.String("id", o.ID), slog.String("by", session.UserID()))
	s.publish(ctx, events.ChannelOpportunityUpdated, o)
	return o, nil
}

func (s *OpportunityService) Delete(ctx context.Context, session *access.Session, id string) error {
	if !access.CanManage(session, access.CollectionOpportunities) {
		return apperror.Forbidden("only admins and recruiters can delete opportunities")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("deleting opportunity", err)
	}

	s.logger.Info("opportunity deleted", slog.String("id", id), slog.String("by", session.UserID()))
	s.publish(ctx, events.ChannelOpportunityDeleted, &model.Opportunity{ID: id})
	return nil
}

// Apply gates the "apply" action for session. The decision says what the
// caller should do next; a denied decision is not an error.
func (s *OpportunityService) Apply(ctx context.Context, session *access.Session, id string) (access.Decision, *model.Opportunity, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return access.Decision{}, nil, err
	}

	d := access.DecideApply(session, o, s.engine.Today())

	s.logger.Info("apply decided",
		slog.String("opportunityID", o.ID),
		slog.String("userID", session.UserID()),
		slog.String("outcome", string(d.Outcome)),
	)
	return d, o, nil
}

// Inspect reports every record the ranking has to default around.
func (s *OpportunityService) Inspect(ctx context.Context) ([]ranking.Anomaly, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storeErr("listing opportunities", err)
	}
	anomalies := ranking.Inspect(records)
	s.engine.Report(anomalies)
	return anomalies, nil
}

func (s *OpportunityService) publish(ctx context.Context, channel string, o *model.Opportunity) {
	e := events.Event{Type: channel, ID: o.ID}
	if o.Title != "" {
		e.Attributes = map[string]string{"title": o.Title, "category": string(o.Category)}
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("publish failed", slog.String("channel", channel), slog.String("error", err.Error()))
	}
}
