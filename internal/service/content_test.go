package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/upload"
)

type contentFixture struct {
	svc          *ContentService
	partners     *fakeContentRepo[model.Partner]
	team         *fakeContentRepo[model.TeamMember]
	testimonials *fakeContentRepo[model.Testimonial]
	uploader     *fakeUploader
}

func newContentFixture() *contentFixture {
	f := &contentFixture{
		partners:     newFakePartnerRepo(),
		team:         newFakeTeamRepo(),
		testimonials: newFakeTestimonialRepo(),
		uploader:     &fakeUploader{url: "https://img.example.com/uploads/photo.png"},
	}
	f.svc = NewContentService(f.partners, f.team, f.testimonials, f.uploader, discardLogger())
	return f
}

func photo() *Image {
	return &Image{Filename: "photo.png", Body: strings.NewReader("\x89PNG...")}
}

func TestContent_WritesAreAdminOnly(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()

	for _, s := range []*access.Session{access.Anonymous(), sessionAs(model.RoleJobSeeker), sessionAs(model.RoleRecruiter)} {
		if _, err := f.svc.CreatePartner(ctx, s, PartnerInput{Name: "P"}, photo()); !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("CreatePartner(%s) error = %v, want ErrForbidden", s.Role, err)
		}
		if _, err := f.svc.CreateTeamMember(ctx, s, TeamMemberInput{Name: "N", Role: "R"}, nil); !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("CreateTeamMember(%s) error = %v, want ErrForbidden", s.Role, err)
		}
		if _, err := f.svc.CreateTestimonial(ctx, s, TestimonialInput{Name: "N", Content: "C"}); !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("CreateTestimonial(%s) error = %v, want ErrForbidden", s.Role, err)
		}
	}
	if len(f.uploader.received) != 0 {
		t.Error("nothing may be uploaded for a refused request")
	}
}

func TestCreatePartner_UploadsLogo(t *testing.T) {
	f := newContentFixture()

	p, err := f.svc.CreatePartner(context.Background(), sessionAs(model.RoleAdmin), PartnerInput{Name: "Acme", Category: "Corporate"}, photo())
	if err != nil {
		t.Fatalf("CreatePartner() error = %v", err)
	}
	if p.LogoURL != f.uploader.url {
		t.Errorf("LogoURL = %q, want %q", p.LogoURL, f.uploader.url)
	}
	if len(f.uploader.received) != 1 || f.uploader.received[0] != "photo.png" {
		t.Errorf("uploads = %v", f.uploader.received)
	}
}

func TestCreatePartner_RequiresLogo(t *testing.T) {
	f := newContentFixture()
	_, err := f.svc.CreatePartner(context.Background(), sessionAs(model.RoleAdmin), PartnerInput{Name: "Acme"}, nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("CreatePartner() error = %v, want ErrValidation", err)
	}
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name      string
		uploadErr error
		want      error
	}{
		{"host down", fmt.Errorf("upload: posting: %w", errors.New("connection refused")), apperror.ErrUnavailable},
		{"not an image", upload.ErrNotImage, apperror.ErrValidation},
		{"too large", upload.ErrTooLarge, apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContentFixture()
			f.uploader.err = tt.uploadErr

			_, err := f.svc.CreateTeamMember(context.Background(), sessionAs(model.RoleAdmin), TeamMemberInput{Name: "Ravi", Role: "Lead"}, photo())
			if !errors.Is(err, tt.want) {
				t.Fatalf("CreateTeamMember() error = %v, want %v", err, tt.want)
			}
			if len(f.team.items) != 0 {
				t.Error("nothing may be stored when the upload fails")
			}
		})
	}
}

func TestUpload_NoEndpointConfigured(t *testing.T) {
	svc := NewContentService(newFakePartnerRepo(), newFakeTeamRepo(), newFakeTestimonialRepo(), nil, discardLogger())
	_, err := svc.CreatePartner(context.Background(), sessionAs(model.RoleAdmin), PartnerInput{Name: "Acme"}, photo())
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("CreatePartner() error = %v, want ErrUnavailable", err)
	}
}

func TestCreateTeamMember_PlaceholderAvatar(t *testing.T) {
	f := newContentFixture()

	m, err := f.svc.CreateTeamMember(context.Background(), sessionAs(model.RoleAdmin), TeamMemberInput{Name: "Ravi Kumar", Role: "Lead"}, nil)
	if err != nil {
		t.Fatalf("CreateTeamMember() error = %v", err)
	}
	if m.ImageURL != upload.PlaceholderAvatar("Ravi Kumar") {
		t.Errorf("ImageURL = %q, want placeholder", m.ImageURL)
	}
	if len(f.uploader.received) != 0 {
		t.Error("no upload without a photo")
	}
}

func TestUpdateTeamMember_KeepsImageWithoutNewPhoto(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	admin := sessionAs(model.RoleAdmin)

	m, err := f.svc.CreateTeamMember(ctx, admin, TeamMemberInput{Name: "Ravi", Role: "Lead"}, photo())
	if err != nil {
		t.Fatalf("CreateTeamMember() error = %v", err)
	}

	updated, err := f.svc.UpdateTeamMember(ctx, admin, m.ID, TeamMemberInput{Name: "Ravi", Role: "Head"}, nil)
	if err != nil {
		t.Fatalf("UpdateTeamMember() error = %v", err)
	}
	if updated.ImageURL != f.uploader.url || updated.Role != "Head" {
		t.Errorf("UpdateTeamMember() = %+v", updated)
	}
}

func TestTestimonials_DefaultRatingAndAvatar(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()

	created, err := f.svc.CreateTestimonial(ctx, sessionAs(model.RoleAdmin), TestimonialInput{Name: "Lakshmi", Content: "Found my first job here."})
	if err != nil {
		t.Fatalf("CreateTestimonial() error = %v", err)
	}
	if created.Rating != 5 {
		t.Errorf("Rating = %d, want default 5", created.Rating)
	}

	list, err := f.svc.ListTestimonials(ctx)
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v", err)
	}
	if len(list) != 1 || list[0].ImageURL != upload.PlaceholderAvatar("Lakshmi") {
		t.Errorf("ListTestimonials() = %+v", list)
	}

	if _, err := f.svc.CreateTestimonial(ctx, sessionAs(model.RoleAdmin), TestimonialInput{Name: "X", Content: "Y", Rating: 6}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("rating 6 error = %v, want ErrValidation", err)
	}
}

func TestContent_DeleteMissing(t *testing.T) {
	f := newContentFixture()
	admin := sessionAs(model.RoleAdmin)
	ctx := context.Background()

	if err := f.svc.DeletePartner(ctx, admin, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeletePartner() error = %v", err)
	}
	if err := f.svc.DeleteTeamMember(ctx, admin, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteTeamMember() error = %v", err)
	}
	if err := f.svc.DeleteTestimonial(ctx, admin, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteTestimonial() error = %v", err)
	}
}
