package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

var (
	_ repository.NotificationRepository = (*NotificationStore)(nil)
	_ repository.SettingsRepository     = (*SettingsStore)(nil)
)

type NotificationStore struct {
	db *DB
}

func (s *NotificationStore) Create(ctx context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, title, type, opportunity_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Type, n.OpportunityID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListSince(ctx context.Context, since time.Time) ([]model.Notification, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, title, type, opportunity_id, created_at FROM notifications
		 WHERE created_at >= ? ORDER BY created_at DESC`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications: %w", err)
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Type, &n.OpportunityID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *NotificationStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM notifications WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("sqlite: pruning notifications: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

const siteSettingsKey = "links"

// SettingsStore keeps the site settings as one JSON document.
type SettingsStore struct {
	db *DB
}

func (s *SettingsStore) Get(ctx context.Context) (*model.SiteSettings, error) {
	var raw string
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, siteSettingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return &model.SiteSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading settings: %w", err)
	}

	var settings model.SiteSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("sqlite: decoding settings: %w", err)
	}
	return &settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings *model.SiteSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("sqlite: encoding settings: %w", err)
	}

	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		siteSettingsKey, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving settings: %w", err)
	}
	return nil
}
