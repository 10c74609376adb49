package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

// Compile-time interface check.
var _ repository.OpportunityRepository = (*OpportunityStore)(nil)

const opportunityVersionKey = "opportunities.version"

const opportunityColumns = `id, title, company, category, location, work_mode, deadline, status,
	stipend, stipend_value, description, requirements, link, featured, created_at, updated_at`

// OpportunityStore is the sqlite OpportunityRepository.
type OpportunityStore struct {
	db *DB
}

// Create normalises o, assigns its id and timestamps, and inserts it.
func (s *OpportunityStore) Create(ctx context.Context, o *model.Opportunity) error {
	if err := model.NormalizeOpportunity(o); err != nil {
		return apperror.ValidationFailed("opportunity", err.Error())
	}

	o.ID = xid.New().String()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	reqs, err := json.Marshal(o.Requirements)
	if err != nil {
		return fmt.Errorf("sqlite: encoding requirements: %w", err)
	}

	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO opportunities (`+opportunityColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Title, o.Company, o.Category, o.Location, o.WorkMode, o.Deadline, o.Status,
			o.Stipend, o.StipendValue, o.Description, string(reqs), o.Link, o.Featured,
			o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: creating opportunity: %w", err)
		}
		return bumpCounter(ctx, tx, opportunityVersionKey)
	})
}

func (s *OpportunityStore) GetByID(ctx context.Context, id string) (*model.Opportunity, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = ?`, id)

	o, err := scanOpportunity(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("opportunity", id)
		}
		return nil, fmt.Errorf("sqlite: getting opportunity %s: %w", id, err)
	}
	return o, nil
}

// ListAll returns every opportunity in insertion order. A stored record whose
// enum fields cannot be parsed fails the whole read.
func (s *OpportunityStore) ListAll(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing opportunities: %w", err)
	}
	defer rows.Close()

	out := []model.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning opportunity row: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating opportunities: %w", err)
	}
	return out, nil
}

// Update overwrites every editable field. CreatedAt is never changed.
func (s *OpportunityStore) Update(ctx context.Context, o *model.Opportunity) error {
	if err := model.NormalizeOpportunity(o); err != nil {
		return apperror.ValidationFailed("opportunity", err.Error())
	}
	o.UpdatedAt = time.Now().UTC()

	reqs, err := json.Marshal(o.Requirements)
	if err != nil {
		return fmt.Errorf("sqlite: encoding requirements: %w", err)
	}

	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE opportunities
			 SET title = ?, company = ?, category = ?, location = ?, work_mode = ?, deadline = ?,
			     status = ?, stipend = ?, stipend_value = ?, description = ?, requirements = ?,
			     link = ?, featured = ?, updated_at = ?
			 WHERE id = ?`,
			o.Title, o.Company, o.Category, o.Location, o.WorkMode, o.Deadline,
			o.Status, o.Stipend, o.StipendValue, o.Description, string(reqs),
			o.Link, o.Featured, o.UpdatedAt,
			o.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating opportunity %s: %w", o.ID, err)
		}
		if err := rowsAffected(result, apperror.NotFound("opportunity", o.ID)); err != nil {
			return err
		}
		return bumpCounter(ctx, tx, opportunityVersionKey)
	})
}

func (s *OpportunityStore) Delete(ctx context.Context, id string) error {
	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting opportunity %s: %w", id, err)
		}
		if err := rowsAffected(result, apperror.NotFound("opportunity", id)); err != nil {
			return err
		}
		return bumpCounter(ctx, tx, opportunityVersionKey)
	})
}

// Version is bumped in the same transaction as every write, so equal
// versions mean equal contents.
func (s *OpportunityStore) Version(ctx context.Context) (uint64, error) {
	n, err := s.db.Counters().Get(ctx, opportunityVersionKey)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row scanner) (*model.Opportunity, error) {
	var (
		o         model.Opportunity
		reqs      string
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.Title, &o.Company, &o.Category, &o.Location, &o.WorkMode, &o.Deadline, &o.Status,
		&o.Stipend, &o.StipendValue, &o.Description, &reqs, &o.Link, &o.Featured,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reqs != "" {
		if err := json.Unmarshal([]byte(reqs), &o.Requirements); err != nil {
			return nil, fmt.Errorf("opportunity %s: decoding requirements: %w", o.ID, err)
		}
	}
	// zero stays zero; ranking treats it as the oldest possible record
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	if err := model.NormalizeOpportunity(&o); err != nil {
		return nil, fmt.Errorf("opportunity %s: %w", o.ID, err)
	}
	return &o, nil
}
