// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go port, so the binary builds without cgo and
// ships as a single file. The database is a single file on disk (DB_PATH);
// tests use ":memory:".
//
// Each collection is exposed as its own store (db.Opportunities(),
// db.Users(), ...) so method names stay short and the stores satisfy the
// narrow interfaces in package repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the connection pool shared by every store.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and migrates it.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// every connection to ":memory:" is its own empty database
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Opportunities() *OpportunityStore { return &OpportunityStore{db: db} }
func (db *DB) Users() *UserStore                 { return &UserStore{db: db} }
func (db *DB) Partners() *PartnerStore           { return &PartnerStore{db: db} }
func (db *DB) Team() *TeamStore                  { return &TeamStore{db: db} }
func (db *DB) Testimonials() *TestimonialStore   { return &TestimonialStore{db: db} }
func (db *DB) Messages() *MessageStore           { return &MessageStore{db: db} }
func (db *DB) Notifications() *NotificationStore { return &NotificationStore{db: db} }
func (db *DB) Settings() *SettingsStore          { return &SettingsStore{db: db} }
func (db *DB) Counters() *CounterStore           { return &CounterStore{db: db} }

// migrate creates every table. Statements are idempotent so it runs on each
// start; columns added after the first release go through
// addColumnIfNotExists.
func (db *DB) migrate() error {
	tables := []struct {
		name string
		ddl  string
	}{
		{"opportunities", `
			CREATE TABLE IF NOT EXISTS opportunities (
				id            TEXT PRIMARY KEY,
				title         TEXT NOT NULL,
				company       TEXT NOT NULL DEFAULT '',
				category      TEXT NOT NULL DEFAULT 'job',
				location      TEXT NOT NULL DEFAULT '',
				work_mode     TEXT NOT NULL DEFAULT 'on-site',
				deadline      TEXT NOT NULL DEFAULT '',
				status        TEXT NOT NULL DEFAULT 'open',
				stipend       TEXT NOT NULL DEFAULT '',
				stipend_value INTEGER NOT NULL DEFAULT 0,
				description   TEXT NOT NULL DEFAULT '',
				requirements  TEXT NOT NULL DEFAULT '[]',
				link          TEXT NOT NULL DEFAULT '',
				featured      INTEGER NOT NULL DEFAULT 0,
				created_at    DATETIME,
				updated_at    DATETIME
			);
			CREATE INDEX IF NOT EXISTS idx_opportunities_created_at ON opportunities(created_at);`},
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id                   TEXT PRIMARY KEY,
				email                TEXT NOT NULL UNIQUE,
				name                 TEXT NOT NULL DEFAULT '',
				avatar_url           TEXT NOT NULL DEFAULT '',
				role                 TEXT NOT NULL DEFAULT 'jobseeker',
				provider_id          TEXT UNIQUE,
				password_hash        TEXT NOT NULL DEFAULT '',
				phone                TEXT NOT NULL DEFAULT '',
				location             TEXT NOT NULL DEFAULT '',
				date_of_birth        TEXT NOT NULL DEFAULT '',
				gender               TEXT NOT NULL DEFAULT '',
				other_gender         TEXT NOT NULL DEFAULT '',
				qualification        TEXT NOT NULL DEFAULT '',
				other_qualification  TEXT NOT NULL DEFAULT '',
				field_of_study       TEXT NOT NULL DEFAULT '',
				other_field_of_study TEXT NOT NULL DEFAULT '',
				institution          TEXT NOT NULL DEFAULT '',
				academics            TEXT NOT NULL DEFAULT '',
				linkedin_url         TEXT NOT NULL DEFAULT '',
				github_url           TEXT NOT NULL DEFAULT '',
				portfolio_url        TEXT NOT NULL DEFAULT '',
				profile_completed_at DATETIME,
				created_at           DATETIME NOT NULL,
				updated_at           DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`},
		{"partners", `
			CREATE TABLE IF NOT EXISTS partners (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				category   TEXT NOT NULL DEFAULT '',
				logo_url   TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL
			);`},
		{"team_members", `
			CREATE TABLE IF NOT EXISTS team_members (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				role        TEXT NOT NULL DEFAULT '',
				image_url   TEXT NOT NULL DEFAULT '',
				social_link TEXT NOT NULL DEFAULT '',
				created_at  DATETIME NOT NULL
			);`},
		{"testimonials", `
			CREATE TABLE IF NOT EXISTS testimonials (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				role       TEXT NOT NULL DEFAULT '',
				image_url  TEXT NOT NULL DEFAULT '',
				content    TEXT NOT NULL,
				rating     INTEGER NOT NULL DEFAULT 5,
				created_at DATETIME NOT NULL
			);`},
		{"messages", `
			CREATE TABLE IF NOT EXISTS messages (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				email      TEXT NOT NULL,
				message    TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);`},
		{"notifications", `
			CREATE TABLE IF NOT EXISTS notifications (
				id             TEXT PRIMARY KEY,
				title          TEXT NOT NULL,
				type           TEXT NOT NULL,
				opportunity_id TEXT NOT NULL DEFAULT '',
				created_at     DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);`},
		{"settings", `
			CREATE TABLE IF NOT EXISTS settings (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			);`},
		{"counters", `
			CREATE TABLE IF NOT EXISTS counters (
				name  TEXT PRIMARY KEY,
				value INTEGER NOT NULL DEFAULT 0
			);`},
	}

	for _, t := range tables {
		if _, err := db.conn.Exec(t.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", t.name, err)
		}
	}

	// testimonials predating star ratings
	if err := db.addColumnIfNotExists("testimonials", "rating", "INTEGER NOT NULL DEFAULT 5"); err != nil {
		return fmt.Errorf("adding rating to testimonials: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to an existing table.
// SQLite has no ADD COLUMN IF NOT EXISTS, so check pragma_table_info first.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// rowsAffected turns a zero-row write into notFound.
func rowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// nullTime maps the zero time to NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
