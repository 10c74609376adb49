// Package ranking orders and filters opportunity listings for display.
//
// Everything in this package is a pure function over records that are already
// in memory. Rank is safe to call on every keystroke of a search box: at the
// scale of a community board (tens to hundreds of records) a full
// filter-and-sort pass is cheaper than any cache invalidation logic.
package ranking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
)

// All is the wildcard value for the category and work-mode selectors.
const All = "all"

// PreviewSize is how many listings the home page preview shows.
const PreviewSize = 3

// Criteria is the UI-local filter state. It is never persisted.
type Criteria struct {
	Search     string `json:"search"`
	Category   string `json:"category"`
	WorkMode   string `json:"workMode"`
	MinStipend int    `json:"minStipend"`
}

// DefaultCriteria matches every record.
func DefaultCriteria() Criteria {
	return Criteria{Category: All, WorkMode: All}
}

// ParseCriteria builds Criteria from raw selector values such as URL query
// parameters. Empty selectors mean "all". Unknown category or work mode values
// and a negative or non-numeric stipend threshold are rejected.
func ParseCriteria(search, category, workMode, minStipend string) (Criteria, error) {
	c := DefaultCriteria()
	c.Search = strings.TrimSpace(search)

	if category = strings.TrimSpace(category); category != "" && !strings.EqualFold(category, All) {
		cat, err := model.ParseCategory(category)
		if err != nil {
			return Criteria{}, err
		}
		c.Category = string(cat)
	}

	if workMode = strings.TrimSpace(workMode); workMode != "" && !strings.EqualFold(workMode, All) {
		mode, err := model.ParseWorkMode(workMode)
		if err != nil {
			return Criteria{}, err
		}
		c.WorkMode = string(mode)
	}

	if minStipend = strings.TrimSpace(minStipend); minStipend != "" {
		v, err := strconv.Atoi(minStipend)
		if err != nil || v < 0 {
			return Criteria{}, fmt.Errorf("minimum stipend must be a non-negative integer, got %q", minStipend)
		}
		c.MinStipend = v
	}

	return c, nil
}

// Matches reports whether a record passes every filter predicate:
// category, search term against title or company, work mode and stipend floor.
func (c Criteria) Matches(o *model.Opportunity) bool {
	return c.matchesCategory(o) &&
		c.matchesSearch(o) &&
		c.matchesWorkMode(o) &&
		o.StipendValue >= c.MinStipend
}

func (c Criteria) matchesCategory(o *model.Opportunity) bool {
	if isWildcard(c.Category) {
		return true
	}
	want, err := model.ParseCategory(c.Category)
	if err != nil {
		return false
	}
	return o.Category == want
}

func (c Criteria) matchesWorkMode(o *model.Opportunity) bool {
	if isWildcard(c.WorkMode) {
		return true
	}
	want, err := model.ParseWorkMode(c.WorkMode)
	if err != nil {
		return false
	}
	return o.WorkMode == want
}

func (c Criteria) matchesSearch(o *model.Opportunity) bool {
	term := strings.ToLower(c.Search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Title), term) ||
		strings.Contains(strings.ToLower(o.Company), term)
}

func isWildcard(selector string) bool {
	selector = strings.TrimSpace(selector)
	return selector == "" || strings.EqualFold(selector, All)
}
