package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the single role a signed-in user holds.
//
// Roles are a closed set. Code that branches on a role switches over these
// constants, never over raw strings coming from the store or a token.
type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a raw string to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleJobSeeker:
		return RoleJobSeeker, nil
	case RoleRecruiter:
		return RoleRecruiter, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsPrivileged reports whether the role may post and edit opportunities.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleRecruiter
}

// OtherOption is the sentinel a select field holds when the user picked
// "Other" and must describe their answer in the companion field.
const OtherOption = "Other"

// UserProfile is the viewer's identity, role and self-service profile.
//
// The identity fields (ID, Email, ProviderID) come from the identity provider
// on first sign-in. Role is changed only by an admin, never by its holder.
// Everything under "profile fields" is optional and edited by the user.
type UserProfile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatarUrl"`
	Role         Role   `json:"role"`
	ProviderID   string `json:"-"`
	PasswordHash string `json:"-"`

	// profile fields
	Phone              string `json:"phone"`
	Location           string `json:"location"`
	DateOfBirth        string `json:"dateOfBirth"`
	Gender             string `json:"gender"`
	OtherGender        string `json:"otherGender"`
	Qualification      string `json:"qualification"`
	OtherQualification string `json:"otherQualification"`
	FieldOfStudy       string `json:"fieldOfStudy"`
	OtherFieldOfStudy  string `json:"otherFieldOfStudy"`
	Institution        string `json:"institution"`
	Academics          string `json:"academics"`
	LinkedInURL        string `json:"linkedinUrl"`
	GitHubURL          string `json:"githubUrl"`
	PortfolioURL       string `json:"portfolioUrl"`

	// ProfileCompletedAt is set the first time the profile passes the
	// completeness check and is never cleared afterwards.
	ProfileCompletedAt *time.Time `json:"profileCompletedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeProfile trims every free-text field and defaults the role.
// An unknown non-empty role is a shape violation.
func NormalizeProfile(p *UserProfile) error {
	for _, f := range []*string{
		&p.Email, &p.Name, &p.AvatarURL, &p.Phone, &p.Location, &p.DateOfBirth,
		&p.Gender, &p.OtherGender, &p.Qualification, &p.OtherQualification,
		&p.FieldOfStudy, &p.OtherFieldOfStudy, &p.Institution, &p.Academics,
		&p.LinkedInURL, &p.GitHubURL, &p.PortfolioURL,
	} {
		*f = strings.TrimSpace(*f)
	}

	if strings.TrimSpace(string(p.Role)) == "" {
		p.Role = RoleJobSeeker
		return nil
	}
	r, err := ParseRole(string(p.Role))
	if err != nil {
		return err
	}
	p.Role = r
	return nil
}

// ProfileUpdate carries the self-service fields a user may change on their
// own profile. Identity and role are deliberately absent.
type ProfileUpdate struct {
	Name               string `json:"name" validate:"max=100"`
	Phone              string `json:"phone" validate:"max=20"`
	Location           string `json:"location" validate:"max=100"`
	DateOfBirth        string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender             string `json:"gender" validate:"max=50"`
	OtherGender        string `json:"otherGender" validate:"max=100"`
	Qualification      string `json:"qualification" validate:"max=100"`
	OtherQualification string `json:"otherQualification" validate:"max=100"`
	FieldOfStudy       string `json:"fieldOfStudy" validate:"max=100"`
	OtherFieldOfStudy  string `json:"otherFieldOfStudy" validate:"max=100"`
	Institution        string `json:"institution" validate:"max=200"`
	Academics          string `json:"academics" validate:"max=2000"`
	LinkedInURL        string `json:"linkedinUrl" validate:"omitempty,url"`
	GitHubURL          string `json:"githubUrl" validate:"omitempty,url"`
	PortfolioURL       string `json:"portfolioUrl" validate:"omitempty,url"`
}

// ApplyTo copies the update onto a profile. An empty name keeps the old name.
func (u ProfileUpdate) ApplyTo(p *UserProfile) {
	if name := strings.TrimSpace(u.Name); name != "" {
		p.Name = name
	}
	p.Phone = u.Phone
	p.Location = u.Location
	p.DateOfBirth = u.DateOfBirth
	p.Gender = u.Gender
	p.OtherGender = u.OtherGender
	p.Qualification = u.Qualification
	p.OtherQualification = u.OtherQualification
	p.FieldOfStudy = u.FieldOfStudy
	p.OtherFieldOfStudy = u.OtherFieldOfStudy
	p.Institution = u.Institution
	p.Academics = u.Academics
	p.LinkedInURL = u.LinkedInURL
	p.GitHubURL = u.GitHubURL
	p.PortfolioURL = u.PortfolioURL
}
