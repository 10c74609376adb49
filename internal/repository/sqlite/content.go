package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

var (
	_ repository.PartnerRepository     = (*PartnerStore)(nil)
	_ repository.TeamRepository        = (*TeamStore)(nil)
	_ repository.TestimonialRepository = (*TestimonialStore)(nil)
	_ repository.MessageRepository     = (*MessageStore)(nil)
)

// =========================================================================
// PARTNERS
// =========================================================================

type PartnerStore struct {
	db *DB
}

func (s *PartnerStore) Create(ctx context.Context, p *model.Partner) error {
	p.ID = xid.New().String()
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO partners (id, name, category, logo_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, strings.TrimSpace(p.Name), strings.TrimSpace(p.Category), p.LogoURL, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating partner: %w", err)
	}
	return nil
}

func (s *PartnerStore) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	var p model.Partner
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, category, logo_url, created_at FROM partners WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.LogoURL, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("partner", id)
		}
		return nil, fmt.Errorf("sqlite: getting partner %s: %w", id, err)
	}
	return &p, nil
}

func (s *PartnerStore) List(ctx context.Context) ([]model.Partner, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, category, logo_url, created_at FROM partners ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing partners: %w", err)
	}
	defer rows.Close()

	out := []model.Partner{}
	for rows.Next() {
		var p model.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.LogoURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning partner row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PartnerStore) Update(ctx context.Context, p *model.Partner) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE partners SET name = ?, category = ?, logo_url = ? WHERE id = ?`,
		strings.TrimSpace(p.Name), strings.TrimSpace(p.Category), p.LogoURL, p.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating partner %s: %w", p.ID, err)
	}
	return rowsAffected(result, apperror.NotFound("partner", p.ID))
}

func (s *PartnerStore) Delete(ctx context.Context, id string) error {
	return s.db.deleteByID(ctx, "partners", "partner", id)
}

// =========================================================================
// TEAM
// =========================================================================

type TeamStore struct {
	db *DB
}

func (s *TeamStore) Create(ctx context.Context, m *model.TeamMember) error {
	m.ID = xid.New().String()
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO team_members (id, name, role, image_url, social_link, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, strings.TrimSpace(m.Name), strings.TrimSpace(m.Role), m.ImageURL, m.SocialLink, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating team member: %w", err)
	}
	return nil
}

func (s *TeamStore) GetByID(ctx context.Context, id string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, role, image_url, social_link, created_at FROM team_members WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.Role, &m.ImageURL, &m.SocialLink, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("team member", id)
		}
		return nil, fmt.Errorf("sqlite: getting team member %s: %w", id, err)
	}
	return &m, nil
}

// List returns members oldest first, the order they joined.
func (s *TeamStore) List(ctx context.Context) ([]model.TeamMember, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, role, image_url, social_link, created_at FROM team_members ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing team members: %w", err)
	}
	defer rows.Close()

	out := []model.TeamMember{}
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.ImageURL, &m.SocialLink, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning team member row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *TeamStore) Update(ctx context.Context, m *model.TeamMember) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE team_members SET name = ?, role = ?, image_url = ?, social_link = ? WHERE id = ?`,
		strings.TrimSpace(m.Name), strings.TrimSpace(m.Role), m.ImageURL, m.SocialLink, m.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating team member %s: %w", m.ID, err)
	}
	return rowsAffected(result, apperror.NotFound("team member", m.ID))
}

func (s *TeamStore) Delete(ctx context.Context, id string) error {
	return s.db.deleteByID(ctx, "team_members", "team member", id)
}

// =========================================================================
// TESTIMONIALS
// =========================================================================

type TestimonialStore struct {
	db *DB
}

func (s *TestimonialStore) Create(ctx context.Context, t *model.Testimonial) error {
	t.ID = xid.New().String()
	t.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO testimonials (id, name, role, image_url, content, rating, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, strings.TrimSpace(t.Name), strings.TrimSpace(t.Role), t.ImageURL, strings.TrimSpace(t.Content), t.Rating, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating testimonial: %w", err)
	}
	return nil
}

func (s *TestimonialStore) GetByID(ctx context.Context, id string) (*model.Testimonial, error) {
	var t model.Testimonial
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, role, image_url, content, rating, created_at FROM testimonials WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Role, &t.ImageURL, &t.Content, &t.Rating, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("testimonial", id)
		}
		return nil, fmt.Errorf("sqlite: getting testimonial %s: %w", id, err)
	}
	return &t, nil
}

func (s *TestimonialStore) List(ctx context.Context) ([]model.Testimonial, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, role, image_url, content, rating, created_at FROM testimonials ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing testimonials: %w", err)
	}
	defer rows.Close()

	out := []model.Testimonial{}
	for rows.Next() {
		var t model.Testimonial
		if err := rows.Scan(&t.ID, &t.Name, &t.Role, &t.ImageURL, &t.Content, &t.Rating, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning testimonial row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TestimonialStore) Update(ctx context.Context, t *model.Testimonial) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE testimonials SET name = ?, role = ?, image_url = ?, content = ?, rating = ? WHERE id = ?`,
		strings.TrimSpace(t.Name), strings.TrimSpace(t.Role), t.ImageURL, strings.TrimSpace(t.Content), t.Rating, t.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating testimonial %s: %w", t.ID, err)
	}
	return rowsAffected(result, apperror.NotFound("testimonial", t.ID))
}

func (s *TestimonialStore) Delete(ctx context.Context, id string) error {
	return s.db.deleteByID(ctx, "testimonials", "testimonial", id)
}

// =========================================================================
// CONTACT MESSAGES
// =========================================================================

type MessageStore struct {
	db *DB
}

func (s *MessageStore) Create(ctx context.Context, m *model.ContactMessage) error {
	m.ID = xid.New().String()
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, strings.TrimSpace(m.Name), strings.TrimSpace(m.Email), strings.TrimSpace(m.Message), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating message: %w", err)
	}
	return nil
}

func (s *MessageStore) List(ctx context.Context, opts repository.ListOptions) ([]model.ContactMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, email, message, created_at FROM messages
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, max(opts.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	defer rows.Close()

	out := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MessageStore) Delete(ctx context.Context, id string) error {
	return s.db.deleteByID(ctx, "messages", "message", id)
}

// deleteByID removes one row. table is a constant from the caller.
func (db *DB) deleteByID(ctx context.Context, table, resource, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", resource, id, err)
	}
	return rowsAffected(result, apperror.NotFound(resource, id))
}
