// Package model defines the data structures used throughout the portal.
//
// Records arrive from the store in many half-filled shapes. Every record passes
// through exactly one normalisation function (NormalizeOpportunity and friends)
// on its way out of the repository layer, so the rest of the code can rely on
// closed enums and non-empty display fields instead of defaulting ad hoc.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of opportunity being listed.
type Category string

const (
	CategoryJob        Category = "job"
	CategoryInternship Category = "internship"
	CategoryWorkshop   Category = "workshop"
	CategoryHackathon  Category = "hackathon"
	CategorySeminar    Category = "seminar"
	CategoryWebinar    Category = "webinar"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryJob,
	CategoryInternship,
	CategoryWorkshop,
	CategoryHackathon,
	CategorySeminar,
	CategoryWebinar,
}

// ParseCategory converts a raw string to a Category.
// The plural forms used by the old admin forms ("jobs", "internships", ...)
// are accepted as aliases.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown opportunity category %q", s)
}

// WorkMode describes where the work happens.
type WorkMode string

const (
	WorkModeOnSite WorkMode = "on-site"
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
)

// ParseWorkMode converts a raw string to a WorkMode. "onsite" and "on site"
// are accepted for on-site.
func ParseWorkMode(s string) (WorkMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on-site", "onsite", "on site":
		return WorkModeOnSite, nil
	case "remote":
		return WorkModeRemote, nil
	case "hybrid":
		return WorkModeHybrid, nil
	}
	return "", fmt.Errorf("unknown work mode %q", s)
}

// Status is the lifecycle status an admin sets on an opportunity.
// It is only half of the "effectively closed" rule; the deadline is the other half.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ParseStatus converts a raw string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	}
	return "", fmt.Errorf("unknown opportunity status %q", s)
}

// DeadlineLayout is the calendar-date layout deadlines are stored in.
const DeadlineLayout = "2006-01-02"

// Opportunity is a postable listing: a job, internship, workshop and so on.
//
// Deadline is kept as the raw stored string. Parsing happens where the value is
// used (ranking, badges) so a malformed deadline can be reported instead of
// silently rewritten at load time.
type Opportunity struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Category     Category  `json:"category"`
	Location     string    `json:"location"`
	WorkMode     WorkMode  `json:"workMode"`
	Deadline     string    `json:"deadline"`
	Status       Status    `json:"status"`
	Stipend      string    `json:"stipend"`
	StipendValue int       `json:"stipendValue"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Link         string    `json:"link"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DeadlineDate parses the deadline as a calendar date in UTC.
// Full RFC 3339 timestamps are accepted too; only their date part is kept.
func (o *Opportunity) DeadlineDate() (time.Time, bool) {
	raw := strings.TrimSpace(o.Deadline)
	if raw == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(DeadlineLayout, raw); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// Defaults applied by NormalizeOpportunity to empty display fields.
const (
	DefaultTitle    = "No Title"
	DefaultCompany  = "Not Specified"
	DefaultLocation = "Remote"
	DefaultStipend  = "Not Disclosed"
	DefaultLink     = "#"
)

// NormalizeOpportunity trims and defaults an opportunity in place.
//
// Empty fields get their display defaults. A non-empty enum field holding an
// unknown value is a shape violation and is returned as an error; the record
// is left partially normalised in that case and must not be used.
func NormalizeOpportunity(o *Opportunity) error {
	o.ID = strings.TrimSpace(o.ID)
	o.Title = orDefault(o.Title, DefaultTitle)
	o.Company = orDefault(o.Company, DefaultCompany)
	o.Location = orDefault(o.Location, DefaultLocation)
	o.Stipend = orDefault(o.Stipend, DefaultStipend)
	o.Link = orDefault(o.Link, DefaultLink)
	o.Description = strings.TrimSpace(o.Description)
	o.Deadline = strings.TrimSpace(o.Deadline)

	if strings.TrimSpace(string(o.Category)) == "" {
		o.Category = CategoryJob
	} else {
		c, err := ParseCategory(string(o.Category))
		if err != nil {
			return err
		}
		o.Category = c
	}

	if strings.TrimSpace(string(o.WorkMode)) == "" {
		o.WorkMode = WorkModeOnSite
	} else {
		m, err := ParseWorkMode(string(o.WorkMode))
		if err != nil {
			return err
		}
		o.WorkMode = m
	}

	if strings.TrimSpace(string(o.Status)) == "" {
		o.Status = StatusOpen
	} else {
		s, err := ParseStatus(string(o.Status))
		if err != nil {
			return err
		}
		o.Status = s
	}

	if o.StipendValue < 0 {
		o.StipendValue = 0
	}

	reqs := make([]string, 0, len(o.Requirements))
	for _, r := range o.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			reqs = append(reqs, r)
		}
	}
	o.Requirements = reqs

	return nil
}

// SplitRequirements turns comma-separated requirement text into tags.
func SplitRequirements(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
