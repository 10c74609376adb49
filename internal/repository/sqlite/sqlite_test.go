package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// newTestDB opens a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}

// =========================================================================
// OPPORTUNITIES
// =========================================================================

func TestOpportunityCreate_NormalisesAtBoundary(t *testing.T) {
	store := newTestDB(t).Opportunities()
	ctx := context.Background()

	o := &model.Opportunity{
		Title:        "  Data Analyst ",
		Category:     "Internships",
		Requirements: []string{"SQL", " ", "Excel"},
		StipendValue: -5,
	}
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if o.ID == "" || o.CreatedAt.IsZero() {
		t.Fatal("Create() did not set ID and CreatedAt")
	}

	got, err := store.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Title != "Data Analyst" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Category != model.CategoryInternship {
		t.Errorf("Category = %q, want %q", got.Category, model.CategoryInternship)
	}
	if got.Company != model.DefaultCompany || got.Link != model.DefaultLink || got.Status != model.StatusOpen {
		t.Errorf("defaults not applied: %+v", got)
	}
	if len(got.Requirements) != 2 || got.Requirements[1] != "Excel" {
		t.Errorf("Requirements = %v", got.Requirements)
	}
	if got.StipendValue != 0 {
		t.Errorf("StipendValue = %d, want 0", got.StipendValue)
	}
	if !got.CreatedAt.Equal(o.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, o.CreatedAt)
	}
}

func TestOpportunityCreate_RejectsUnknownEnum(t *testing.T) {
	store := newTestDB(t).Opportunities()

	err := store.Create(context.Background(), &model.Opportunity{Title: "x", Status: "paused"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
}

func TestOpportunityVersion_BumpsOnEveryWrite(t *testing.T) {
	store := newTestDB(t).Opportunities()
	ctx := context.Background()

	v0, err := store.Version(ctx)
	if err != nil || v0 != 0 {
		t.Fatalf("Version() = %d, %v; want 0, nil", v0, err)
	}

	o := &model.Opportunity{Title: "Hackathon"}
	_ = store.Create(ctx, o)
	v1, _ := store.Version(ctx)

	o.Featured = true
	if err := store.Update(ctx, o); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	v2, _ := store.Version(ctx)

	if err := store.Delete(ctx, o.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	v3, _ := store.Version(ctx)

	if !(v0 < v1 && v1 < v2 && v2 < v3) {
		t.Errorf("versions not increasing: %d %d %d %d", v0, v1, v2, v3)
	}

	// a failed write leaves the version alone
	_ = store.Delete(ctx, o.ID)
	if v4, _ := store.Version(ctx); v4 != v3 {
		t.Errorf("version moved on a failed delete: %d → %d", v3, v4)
	}
}

func TestOpportunityListAll(t *testing.T) {
	store := newTestDB(t).Opportunities()
	ctx := context.Background()

	empty, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListAll() on empty store = %v, want empty non-nil slice", empty)
	}

	for _, title := range []string{"a", "b", "c"} {
		_ = store.Create(ctx, &model.Opportunity{Title: title})
	}
	all, _ := store.ListAll(ctx)
	if len(all) != 3 || all[0].Title != "a" || all[2].Title != "c" {
		t.Errorf("ListAll() = %v", all)
	}
}

func TestOpportunityListAll_MissingTimestampStaysZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO opportunities (id, title, deadline) VALUES ('legacy', 'Old Post', 'soon')`)
	if err != nil {
		t.Fatalf("seeding legacy row: %v", err)
	}

	all, err := db.Opportunities().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 1 || !all[0].CreatedAt.IsZero() || all[0].Deadline != "soon" {
		t.Errorf("legacy row = %+v", all)
	}
}

func TestOpportunityListAll_CorruptEnumFails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _ = db.conn.ExecContext(ctx,
		`INSERT INTO opportunities (id, title, category) VALUES ('bad', 'Broken', 'gig')`)

	if _, err := db.Opportunities().ListAll(ctx); err == nil {
		t.Fatal("ListAll() should fail on an unknown stored category")
	}
}

func TestOpportunityGetUpdateDelete_NotFound(t *testing.T) {
	store := newTestDB(t).Opportunities()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := store.Update(ctx, &model.Opportunity{ID: "nope", Title: "x"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// COUNTERS, NOTIFICATIONS, SETTINGS
// =========================================================================

func TestCounters(t *testing.T) {
	c := newTestDB(t).Counters()
	ctx := context.Background()

	if n, _ := c.Get(ctx, "visits"); n != 0 {
		t.Errorf("Get() before increment = %d", n)
	}
	for i := int64(1); i <= 3; i++ {
		n, err := c.Increment(ctx, "visits")
		if err != nil || n != i {
			t.Fatalf("Increment() = %d, %v; want %d", n, err, i)
		}
	}
}

func TestNotifications_WindowAndPrune(t *testing.T) {
	store := newTestDB(t).Notifications()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, age := range []time.Duration{time.Hour, 11 * time.Hour, 13 * time.Hour, 48 * time.Hour} {
		n := &model.Notification{Title: age.String(), Type: model.NotificationNewOpportunity, CreatedAt: now.Add(-age)}
		if err := store.Create(ctx, n); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	cutoff := now.Add(-12 * time.Hour)
	recent, err := store.ListSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("ListSince() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Title != "1h0m0s" {
		t.Errorf("ListSince() = %+v", recent)
	}

	pruned, err := store.DeleteBefore(ctx, cutoff)
	if err != nil || pruned != 2 {
		t.Errorf("DeleteBefore() = %d, %v; want 2", pruned, err)
	}
}

func TestSettings_EmptyThenSaved(t *testing.T) {
	store := newTestDB(t).Settings()
	ctx := context.Background()

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *got != (model.SiteSettings{}) {
		t.Errorf("Get() on empty store = %+v", got)
	}

	want := model.SiteSettings{InstagramURL: "https://instagram.com/kandukur", YouTubeURL: "https://youtube.com/@kandukur"}
	if err := store.Save(ctx, &want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want.InstagramURL = "https://instagram.com/ourkandukur"
	_ = store.Save(ctx, &want)

	got, _ = store.Get(ctx)
	if *got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}
