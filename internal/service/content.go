package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/upload"
)

// Image is an optional file sent alongside a content form.
type Image struct {
	Filename string
	Body     io.Reader
}

type PartnerInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"max=50"`
	LogoURL  string `json:"logoUrl" validate:"omitempty,url"`
}

type TeamMemberInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Role       string `json:"role" validate:"required,max=100"`
	SocialLink string `json:"socialLink" validate:"omitempty,url"`
	ImageURL   string `json:"imageUrl" validate:"omitempty,url"`
}

type TestimonialInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"max=100"`
	Content  string `json:"content" validate:"required,max=1000"`
	Rating   int    `json:"rating" validate:"omitempty,min=1,max=5"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// defaultRating is what a testimonial gets when the form leaves it out.
const defaultRating = 5

// ContentService manages the partners strip, the team page and testimonials.
// Reads are public; writes are admin only.
type ContentService struct {
	partners     repository.PartnerRepository
	team         repository.TeamRepository
	testimonials repository.TestimonialRepository
	uploader     upload.Uploader
	logger       *slog.Logger
}

func NewContentService(
	partners repository.PartnerRepository,
	team repository.TeamRepository,
	testimonials repository.TestimonialRepository,
	uploader upload.Uploader,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		partners:     partners,
		team:         team,
		testimonials: testimonials,
		uploader:     uploader,
		logger:       logger,
	}
}

// storeImage uploads img if one was sent. An image the host rejects as the
// wrong type or size is the caller's mistake; anything else means the host
// is down.
func (s *ContentService) storeImage(ctx context.Context, img *Image) (string, error) {
	if img == nil || img.Body == nil {
		return "", nil
	}
	if s.uploader == nil {
		return "", apperror.Unavailable("image host", errors.New("no upload endpoint configured"))
	}

	url, err := s.uploader.Upload(ctx, img.Filename, img.Body)
	if err != nil {
		if errors.Is(err, upload.ErrNotImage) || errors.Is(err, upload.ErrTooLarge) {
			return "", apperror.ValidationFailed("image", err.Error())
		}
		s.logger.Error("image upload failed", slog.String("filename", img.Filename), slog.String("error", err.Error()))
		return "", apperror.Unavailable("image host", err)
	}
	return url, nil
}

// =========================================================================
// PARTNERS
// =========================================================================

func (s *ContentService) ListPartners(ctx context.Context) ([]model.Partner, error) {
	out, err := s.partners.List(ctx)
	if err != nil {
		return nil, storeErr("listing partners", err)
	}
	return out, nil
}

// CreatePartner adds a partner. A logo is required, either uploaded or as a URL.
func (s *ContentService) CreatePartner(ctx context.Context, session *access.Session, in PartnerInput, logo *Image) (*model.Partner, error) {
	if !access.CanManage(session, access.CollectionPartners) {
		return nil, apperror.Forbidden("only admins can manage partners")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	url, err := s.storeImage(ctx, logo)
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = in.LogoURL
	}
	if url == "" {
		return nil, apperror.ValidationFailed("logo", "please select a logo to upload")
	}

	p := &model.Partner{Name: in.Name, Category: in.Category, LogoURL: url}
	if err := s.partners.Create(ctx, p); err != nil {
		return nil, storeErr("creating partner", err)
	}
	s.logger.Info("partner created", slog.String("id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// UpdatePartner edits a partner. Without a new logo the old one is kept.
func (s *ContentService) UpdatePartner(ctx context.Context, session *access.Session, id string, in PartnerInput, logo *Image) (*model.Partner, error) {
	if !access.CanManage(session, access.CollectionPartners) {
		return nil, apperror.Forbidden("only admins can manage partners")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("getting partner", err)
	}
	url, err := s.storeImage(ctx, logo)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Category = in.Category
	switch {
	case url != "":
		p.LogoURL = url
	case in.LogoURL != "":
		p.LogoURL = in.LogoURL
	}

	if err := s.partners.Update(ctx, p); err != nil {
		return nil, storeErr("updating partner", err)
	}
	return p, nil
}

func (s *ContentService) DeletePartner(ctx context.Context, session *access.Session, id string) error {
	if !access.CanManage(session, access.CollectionPartners) {
		return apperror.Forbidden("only admins can manage partners")
	}
	if err := s.partners.Delete(ctx, id); err != nil {
		return storeErr("deleting partner", err)
	}
	s.logger.Info("partner deleted", slog.String("id", id))
	return nil
}

// =========================================================================
// TEAM
// =========================================================================

func (s *ContentService) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	out, err := s.team.List(ctx)
	if err != nil {
		return nil, storeErr("listing team", err)
	}
	return out, nil
}

// CreateTeamMember adds a member. Without a photo the member gets a
// generated initials avatar.
func (s *ContentService) CreateTeamMember(ctx context.Context, session *access.Session, in TeamMemberInput, photo *Image) (*model.TeamMember, error) {
	if !access.CanManage(session, access.CollectionTeam) {
		return nil, apperror.Forbidden("only admins can manage the team")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	url, err := s.storeImage(ctx, photo)
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = in.ImageURL
	}
	if url == "" {
		url = upload.PlaceholderAvatar(in.Name)
	}

	m := &model.TeamMember{Name: in.Name, Role: in.Role, ImageURL: url, SocialLink: in.SocialLink}
	if err := s.team.Create(ctx, m); err != nil {
		return nil, storeErr("creating team member", err)
	}
	s.logger.Info("team member created", slog.String("id", m.ID), slog.String("name", m.Name))
	return m, nil
}

func (s *ContentService) UpdateTeamMember(ctx context.Context, session *access.Session, id string, in TeamMemberInput, photo *Image) (*model.TeamMember, error) {
	if !access.CanManage(session, access.CollectionTeam) {
		return nil, apperror.Forbidden("only admins can manage the team")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	m, err := s.team.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("getting team member", err)
	}
	url, err := s.storeImage(ctx, photo)
	if err != nil {
		return nil, err
	}

	m.Name = in.Name
	m.Role = in.Role
	m.SocialLink = in.SocialLink
	switch {
	case url != "":
		m.ImageURL = url
	case in.ImageURL != "":
		m.ImageURL = in.ImageURL
	}

	if err := s.team.Update(ctx, m); err != nil {
		return nil, storeErr("updating team member", err)
	}
	return m, nil
}

func (s *ContentService) DeleteTeamMember(ctx context.Context, session *access.Session, id string) error {
	if !access.CanManage(session, access.CollectionTeam) {
		return apperror.Forbidden("only admins can manage the team")
	}
	if err := s.team.Delete(ctx, id); err != nil {
		return storeErr("deleting team member", err)
	}
	s.logger.Info("team member deleted", slog.String("id", id))
	return nil
}

// =========================================================================
// TESTIMONIALS
// =========================================================================

func (s *ContentService) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	out, err := s.testimonials.List(ctx)
	if err != nil {
		return nil, storeErr("listing testimonials", err)
	}
	for i := range out {
		if out[i].ImageURL == "" {
			out[i].ImageURL = upload.PlaceholderAvatar(out[i].Name)
		}
		if out[i].Rating == 0 {
			out[i].Rating = defaultRating
		}
	}
	return out, nil
}

func (s *ContentService) CreateTestimonial(ctx context.Context, session *access.Session, in TestimonialInput) (*model.Testimonial, error) {
	if !access.CanManage(session, access.CollectionTestimonials) {
		return nil, apperror.Forbidden("only admins can manage testimonials")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	t := &model.Testimonial{
		Name:     in.Name,
		Role:     in.Role,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Rating:   in.Rating,
	}
	if t.Rating == 0 {
		t.Rating = defaultRating
	}
	if err := s.testimonials.Create(ctx, t); err != nil {
		return nil, storeErr("creating testimonial", err)
	}
	s.logger.Info("testimonial created", slog.String("id", t.ID))
	return t, nil
}

func (s *ContentService) UpdateTestimonial(ctx context.Context, session *access.Session, id string, in TestimonialInput) (*model.Testimonial, error) {
	if !access.CanManage(session, access.CollectionTestimonials) {
		return nil, apperror.Forbidden("only admins can manage testimonials")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	t, err := s.testimonials.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("getting testimonial", err)
	}
	t.Name = in.Name
	t.Role = in.Role
	t.Content = in.Content
	t.ImageURL = in.ImageURL
	if in.Rating != 0 {
		t.Rating = in.Rating
	}

	if err := s.testimonials.Update(ctx, t); err != nil {
		return nil, storeErr("updating testimonial", err)
	}
	return t, nil
}

func (s *ContentService) DeleteTestimonial(ctx context.Context, session *access.Session, id string) error {
	if !access.CanManage(session, access.CollectionTestimonials) {
		return apperror.Forbidden("only admins can manage testimonials")
	}
	if err := s.testimonials.Delete(ctx, id); err != nil {
		return storeErr("deleting testimonial", err)
	}
	return nil
}
