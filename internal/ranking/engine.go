package ranking

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// AnomalyKind names a data-shape problem that ranking works around.
type AnomalyKind string

const (
	// AnomalyBadDeadline: the deadline is empty or not a calendar date.
	// The record is ranked as if its deadline had not passed.
	AnomalyBadDeadline AnomalyKind = "bad_deadline"
	// AnomalyMissingCreatedAt: no creation timestamp. The record ranks as oldest.
	AnomalyMissingCreatedAt AnomalyKind = "missing_created_at"
)

// Anomaly is one record that ranking had to default around.
type Anomaly struct {
	RecordID string      `json:"recordId"`
	Title    string      `json:"title"`
	Kind     AnomalyKind `json:"kind"`
	Value    string      `json:"value,omitempty"`
}

// Inspect lists every anomaly in records without ranking them.
func Inspect(records []model.Opportunity) []Anomaly {
	var out []Anomaly
	for i := range records {
		o := &records[i]
		if _, ok := o.DeadlineDate(); !ok {
			out = append(out, Anomaly{RecordID: o.ID, Title: o.Title, Kind: AnomalyBadDeadline, Value: o.Deadline})
		}
		if o.CreatedAt.IsZero() {
			out = append(out, Anomaly{RecordID: o.ID, Title: o.Title, Kind: AnomalyMissingCreatedAt})
		}
	}
	return out
}

// Engine runs the pure ranking functions against the current date and
// reports every defaulted record through its logger, so bad records surface
// to operators instead of being hidden by the defaults.
//
// Engine also remembers the last ranking it produced, keyed by the caller's
// records version, the criteria and the date. The cache is an optimisation
// only; callers that pass version 0 always get a fresh pass.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last *cached
}

type cached struct {
	version  uint64
	criteria Criteria
	today    time.Time
	ranked   []model.Opportunity
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now". Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine that logs anomalies to logger.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the engine's current calendar date.
func (e *Engine) Today() time.Time {
	return DateOf(e.now())
}

// Rank filters and orders records for the current date.
func (e *Engine) Rank(records []model.Opportunity, c Criteria) []model.Opportunity {
	return e.RankVersion(0, records, c)
}

// Preview is Rank truncated to PreviewSize.
func (e *Engine) Preview(records []model.Opportunity, c Criteria) []model.Opportunity {
	return Truncate(e.Rank(records, c), PreviewSize)
}

// IsClosed reports effective closedness for the current date.
func (e *Engine) IsClosed(o *model.Opportunity) bool {
	return IsEffectivelyClosed(o, e.Today())
}

// RankVersion is Rank with memoisation keyed on a records version.
// Version 0 disables the cache. The returned slice is the caller's to keep.
func (e *Engine) RankVersion(version uint64, records []model.Opportunity, c Criteria) []model.Opportunity {
	today := e.Today()

	if version != 0 {
		e.mu.Lock()
		hit := e.last
		e.mu.Unlock()
		if hit != nil && hit.version == version && hit.criteria == c && hit.today.Equal(today) {
			return clone(hit.ranked)
		}
	}

	e.Report(Inspect(records))
	ranked := Rank(records, c, today)

	if version != 0 {
		e.mu.Lock()
		e.last = &cached{version: version, criteria: c, today: today, ranked: clone(ranked)}
		e.mu.Unlock()
	}
	return ranked
}

// Lookup returns the memoised ranking for version and c if it is still
// current, letting callers skip loading records altogether.
func (e *Engine) Lookup(version uint64, c Criteria) ([]model.Opportunity, bool) {
	if version == 0 {
		return nil, false
	}
	today := e.Today()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil || e.last.version != version || e.last.criteria != c || !e.last.today.Equal(today) {
		return nil, false
	}
	return clone(e.last.ranked), true
}

// Report logs each anomaly at WARN.
func (e *Engine) Report(anomalies []Anomaly) {
	for _, a := range anomalies {
		e.logger.Warn("opportunity record needs fixing",
			slog.String("id", a.RecordID),
			slog.String("title", a.Title),
			slog.String("kind", string(a.Kind)),
			slog.String("value", a.Value),
		)
	}
}

func clone(in []model.Opportunity) []model.Opportunity {
	out := make([]model.Opportunity, len(in))
	copy(out, in)
	return out
}
