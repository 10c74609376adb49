package model

import "time"

// Partner is an organisation shown in the partners strip.
type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	LogoURL   string    `json:"logoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// TeamMember is a person on the about/team page. Listed oldest first.
type TeamMember struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	ImageURL   string    `json:"imageUrl"`
	SocialLink string    `json:"socialLink"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Testimonial is a quote from a community member.
type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"imageUrl"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationNewOpportunity is the only notification type emitted today.
const NotificationNewOpportunity = "new_opportunity"

// Notification is a short-lived entry in the public notifications panel.
type Notification struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	OpportunityID string    `json:"opportunityId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SiteSettings holds the community and social links shown in the footer.
// A never-saved settings document reads back as all empty strings.
type SiteSettings struct {
	WhatsAppChannelURL   string `json:"whatsappChannelUrl" validate:"omitempty,url"`
	WhatsAppCommunityURL string `json:"whatsappCommunityUrl" validate:"omitempty,url"`
	FacebookURL          string `json:"facebookUrl" validate:"omitempty,url"`
	InstagramURL         string `json:"instagramUrl" validate:"omitempty,url"`
	LinkedInURL          string `json:"linkedinUrl" validate:"omitempty,url"`
	YouTubeURL           string `json:"youtubeUrl" validate:"omitempty,url"`
}
