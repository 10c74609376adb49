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

var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, email, name, avatar_url, role, provider_id, password_hash,
	phone, location, date_of_birth, gender, other_gender, qualification, other_qualification,
	field_of_study, other_field_of_study, institution, academics, linkedin_url, github_url,
	portfolio_url, profile_completed_at, created_at, updated_at`

// UserStore is the sqlite UserRepository.
type UserStore struct {
	db *DB
}

func (s *UserStore) Create(ctx context.Context, u *model.UserProfile) error {
	if err := model.NormalizeProfile(u); err != nil {
		return apperror.ValidationFailed("role", err.Error())
	}
	u.Email = strings.ToLower(u.Email)

	u.ID = xid.New().String()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.AvatarURL, u.Role, nullString(u.ProviderID), u.PasswordHash,
		u.Phone, u.Location, u.DateOfBirth, u.Gender, u.OtherGender, u.Qualification, u.OtherQualification,
		u.FieldOfStudy, u.OtherFieldOfStudy, u.Institution, u.Academics, u.LinkedInURL, u.GitHubURL,
		u.PortfolioURL, nullTimePtr(u.ProfileCompletedAt), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", u.Email)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", u.Email, err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	return s.getBy(ctx, "id", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	return s.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserStore) GetByProviderID(ctx context.Context, providerID string) (*model.UserProfile, error) {
	return s.getBy(ctx, "provider_id", providerID)
}

// getBy looks a user up by a unique column. column is never user input.
func (s *UserStore) getBy(ctx context.Context, column, value string) (*model.UserProfile, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s: %w", column, err)
	}
	return u, nil
}

// Update writes every mutable field. Id, email and CreatedAt are fixed.
func (s *UserStore) Update(ctx context.Context, u *model.UserProfile) error {
	if err := model.NormalizeProfile(u); err != nil {
		return apperror.ValidationFailed("role", err.Error())
	}
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, avatar_url = ?, role = ?, provider_id = ?, password_hash = ?,
		     phone = ?, location = ?, date_of_birth = ?, gender = ?, other_gender = ?,
		     qualification = ?, other_qualification = ?, field_of_study = ?, other_field_of_study = ?,
		     institution = ?, academics = ?, linkedin_url = ?, github_url = ?, portfolio_url = ?,
		     profile_completed_at = ?, updated_at = ?
		 WHERE id = ?`,
		u.Name, u.AvatarURL, u.Role, nullString(u.ProviderID), u.PasswordHash,
		u.Phone, u.Location, u.DateOfBirth, u.Gender, u.OtherGender,
		u.Qualification, u.OtherQualification, u.FieldOfStudy, u.OtherFieldOfStudy,
		u.Institution, u.Academics, u.LinkedInURL, u.GitHubURL, u.PortfolioURL,
		nullTimePtr(u.ProfileCompletedAt), u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", u.ID)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", u.ID, err)
	}
	return rowsAffected(result, apperror.NotFound("user", u.ID))
}

func (s *UserStore) List(ctx context.Context, opts repository.ListOptions) ([]model.UserProfile, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	offset := max(opts.Offset, 0)

	return s.query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

func (s *UserStore) ListByRole(ctx context.Context, role model.Role) ([]model.UserProfile, error) {
	return s.query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at DESC`, role)
}

func (s *UserStore) query(ctx context.Context, q string, args ...any) ([]model.UserProfile, error) {
	rows, err := s.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.UserProfile{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

func scanUser(row scanner) (*model.UserProfile, error) {
	var (
		u           model.UserProfile
		providerID  sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Role, &providerID, &u.PasswordHash,
		&u.Phone, &u.Location, &u.DateOfBirth, &u.Gender, &u.OtherGender, &u.Qualification, &u.OtherQualification,
		&u.FieldOfStudy, &u.OtherFieldOfStudy, &u.Institution, &u.Academics, &u.LinkedInURL, &u.GitHubURL,
		&u.PortfolioURL, &completedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ProviderID = providerID.String
	if completedAt.Valid {
		t := completedAt.Time
		u.ProfileCompletedAt = &t
	}
	if err := model.NormalizeProfile(&u); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
