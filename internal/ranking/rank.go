package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// DateOf returns the calendar day of t as midnight UTC.
// The day is taken in t's own location, so a local "now" maps to the local date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsEffectivelyClosed reports whether an opportunity no longer accepts
// applications: its status is closed, or its deadline date is strictly before
// today. Time of day is ignored. A deadline that cannot be parsed never closes
// a record on its own.
func IsEffectivelyClosed(o *model.Opportunity, today time.Time) bool {
	if o.Status == model.StatusClosed {
		return true
	}
	deadline, ok := o.DeadlineDate()
	if !ok {
		return false
	}
	return deadline.Before(DateOf(today))
}

// Filter returns the records that match c, in input order.
// The input slice is not modified.
func Filter(records []model.Opportunity, c Criteria) []model.Opportunity {
	out := make([]model.Opportunity, 0, len(records))
	for i := range records {
		if c.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// sortKey is computed once per record so the comparator never re-parses dates.
type sortKey struct {
	featured bool
	closed   bool
	created  int64
}

func keyOf(o *model.Opportunity, today time.Time) sortKey {
	created := int64(math.MinInt64)
	if !o.CreatedAt.IsZero() {
		created = o.CreatedAt.UnixNano()
	}
	return sortKey{
		featured: o.Featured,
		closed:   IsEffectivelyClosed(o, today),
		created:  created,
	}
}

// less is the single three-tier comparator: featured before not featured,
// open before closed, then newer before older.
func (a sortKey) less(b sortKey) bool {
	if a.featured != b.featured {
		return a.featured
	}
	if a.closed != b.closed {
		return !a.closed
	}
	return a.created > b.created
}

// Sort returns a stably sorted copy of records.
// Records with equal keys keep their input order.
func Sort(records []model.Opportunity, today time.Time) []model.Opportunity {
	type keyed struct {
		key sortKey
		rec model.Opportunity
	}

	items := make([]keyed, len(records))
	for i := range records {
		items[i] = keyed{key: keyOf(&records[i], today), rec: records[i]}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key.less(items[j].key)
	})

	out := make([]model.Opportunity, len(items))
	for i := range items {
		out[i] = items[i].rec
	}
	return out
}

// Rank filters records by c and orders the survivors for display.
func Rank(records []model.Opportunity, c Criteria, today time.Time) []model.Opportunity {
	return Sort(Filter(records, c), today)
}

// Preview is Rank truncated to the first PreviewSize entries.
func Preview(records []model.Opportunity, c Criteria, today time.Time) []model.Opportunity {
	return Truncate(Rank(records, c, today), PreviewSize)
}

// Truncate returns at most n leading entries of ranked.
func Truncate(ranked []model.Opportunity, n int) []model.Opportunity {
	if n < 0 {
		n = 0
	}
	if len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}
