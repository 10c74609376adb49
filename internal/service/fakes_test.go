package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/events"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory implementations of the repository interfaces. They store copies,
// never the caller's pointers, and apply the same normalisation the sqlite
// store does. Set the *Err fields to simulate a store that is down.

var errStoreDown = errors.New("database is locked")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeOpportunityRepo struct {
	mu      sync.Mutex
	items   map[string]model.Opportunity
	order   []string
	nextID  int
	version uint64
	listN   int // ListAll calls

	listErr   error
	createErr error
}

var _ repository.OpportunityRepository = (*fakeOpportunityRepo)(nil)

func newFakeOpportunityRepo(seed ...model.Opportunity) *fakeOpportunityRepo {
	f := &fakeOpportunityRepo{items: map[string]model.Opportunity{}, version: 1}
	for _, o := range seed {
		if o.ID == "" {
			f.nextID++
			o.ID = fmt.Sprintf("opp-%d", f.nextID)
		}
		f.items[o.ID] = o
		f.order = append(f.order, o.ID)
	}
	return f
}

func (f *fakeOpportunityRepo) Create(_ context.Context, o *model.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if err := model.NormalizeOpportunity(o); err != nil {
		return apperror.ValidationFailed("", err.Error())
	}
	f.nextID++
	o.ID = fmt.Sprintf("opp-%d", f.nextID)
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	f.items[o.ID] = *o
	f.order = append(f.order, o.ID)
	f.version++
	return nil
}

func (f *fakeOpportunityRepo) GetByID(_ context.Context, id string) (*model.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("opportunity", id)
	}
	return &o, nil
}

func (f *fakeOpportunityRepo) ListAll(_ context.Context) ([]model.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listN++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Opportunity, 0, len(f.order))
	for _, id := range f.order {
		if o, ok := f.items[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOpportunityRepo) Update(_ context.Context, o *model.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[o.ID]; !ok {
		return apperror.NotFound("opportunity", o.ID)
	}
	if err := model.NormalizeOpportunity(o); err != nil {
		return apperror.ValidationFailed("", err.Error())
	}
	f.items[o.ID] = *o
	f.version++
	return nil
}

func (f *fakeOpportunityRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("opportunity", id)
	}
	delete(f.items, id)
	f.version++
	return nil
}

func (f *fakeOpportunityRepo) Version(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]model.UserProfile
	nextID int

	getErr    error
	updateErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo(seed ...model.UserProfile) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]model.UserProfile{}}
	for _, u := range seed {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range f.users {
		if existing.Email == u.Email || (u.ProviderID != "" && existing.ProviderID == u.ProviderID) {
			return apperror.Conflict("user", u.Email)
		}
	}
	if err := model.NormalizeProfile(u); err != nil {
		return apperror.ValidationFailed("role", err.Error())
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeUserRepo) find(match func(model.UserProfile) bool, key string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", key)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return f.find(func(u model.UserProfile) bool { return u.Email == email }, email)
}

func (f *fakeUserRepo) GetByProviderID(_ context.Context, providerID string) (*model.UserProfile, error) {
	return f.find(func(u model.UserProfile) bool { return u.ProviderID != "" && u.ProviderID == providerID }, providerID)
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ repository.ListOptions) ([]model.UserProfile, error) {
	return f.ListByRole(context.Background(), "")
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role model.Role) ([]model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.UserProfile{}
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []model.Notification

	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = fmt.Sprintf("n-%d", len(f.items)+1)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotificationRepo) ListSince(_ context.Context, since time.Time) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Notification{}
	for _, n := range f.items {
		if !n.CreatedAt.Before(since) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotificationRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var n int64
	for _, item := range f.items {
		if item.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	return n, nil
}

// fakeContentRepo serves partners, team members and testimonials. Each
// content type gets its own instance.
type fakeContentRepo[T any] struct {
	mu      sync.Mutex
	items   map[string]T
	order   []string
	setID   func(*T, string)
	getID   func(*T) string
	listErr error
}

func newFakeContentRepo[T any](setID func(*T, string), getID func(*T) string) *fakeContentRepo[T] {
	return &fakeContentRepo[T]{items: map[string]T{}, setID: setID, getID: getID}
}

func (f *fakeContentRepo[T]) Create(_ context.Context, v *T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("c-%d", len(f.order)+1)
	f.setID(v, id)
	f.items[id] = *v
	f.order = append(f.order, id)
	return nil
}

func (f *fakeContentRepo[T]) GetByID(_ context.Context, id string) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("content", id)
	}
	return &v, nil
}

func (f *fakeContentRepo[T]) List(context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []T{}
	for _, id := range f.order {
		if v, ok := f.items[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeContentRepo[T]) Update(_ context.Context, v *T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.getID(v)
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("content", id)
	}
	f.items[id] = *v
	return nil
}

func (f *fakeContentRepo[T]) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("content", id)
	}
	delete(f.items, id)
	return nil
}

func newFakePartnerRepo() *fakeContentRepo[model.Partner] {
	return newFakeContentRepo(
		func(p *model.Partner, id string) { p.ID = id },
		func(p *model.Partner) string { return p.ID },
	)
}

func newFakeTeamRepo() *fakeContentRepo[model.TeamMember] {
	return newFakeContentRepo(
		func(m *model.TeamMember, id string) { m.ID = id },
		func(m *model.TeamMember) string { return m.ID },
	)
}

func newFakeTestimonialRepo() *fakeContentRepo[model.Testimonial] {
	return newFakeContentRepo(
		func(t *model.Testimonial, id string) { t.ID = id },
		func(t *model.Testimonial) string { return t.ID },
	)
}

type fakeMessageRepo struct {
	items []model.ContactMessage
}

func (f *fakeMessageRepo) Create(_ context.Context, m *model.ContactMessage) error {
	m.ID = fmt.Sprintf("msg-%d", len(f.items)+1)
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeMessageRepo) List(context.Context, repository.ListOptions) ([]model.ContactMessage, error) {
	return append([]model.ContactMessage{}, f.items...), nil
}

func (f *fakeMessageRepo) Delete(_ context.Context, id string) error {
	for i, m := range f.items {
		if m.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("message", id)
}

type fakeSettingsRepo struct {
	saved *model.SiteSettings
}

func (f *fakeSettingsRepo) Get(context.Context) (*model.SiteSettings, error) {
	if f.saved == nil {
		return &model.SiteSettings{}, nil
	}
	s := *f.saved
	return &s, nil
}

func (f *fakeSettingsRepo) Save(_ context.Context, s *model.SiteSettings) error {
	saved := *s
	f.saved = &saved
	return nil
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Increment(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[name]++
	return f.counts[name], nil
}

func (f *fakeCounter) Get(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[name], nil
}

// =========================================================================
// FAKE COLLABORATORS
// =========================================================================

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

type fakeUploader struct {
	url      string
	err      error
	received []string
}

func (f *fakeUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.received = append(f.received, filename)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}
