// Package ranking computes derived standings from the entity store.
//
// Standings are a pure function of a snapshot and are recomputed on every
// read. They are never persisted; storing them would let the derived view
// drift from the records it summarizes.
package ranking

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/scoring"
)

// EntryStanding is one row of the entry leaderboard.
type EntryStanding struct {
	Entry model.Entry `json:"entry"`
	Avg   float64     `json:"avg"`
	Count int         `json:"count"`
}

// BrewerStanding is one row of the brewer leaderboard. Grouping is by the
// brewer name captured on each scorecard, not the entry's live brewer
// field, so renaming an entry's brewer never rewrites history.
type BrewerStanding struct {
	Name    string  `json:"name"`
	Avg     float64 `json:"avg"`
	Reviews int     `json:"reviews"`
}

// Entries returns the entry leaderboard, sorted descending by average
// total score. The sort is stable: entries with equal averages keep their
// registration order.
func Entries(snap model.Snapshot) []EntryStanding {
	totals := make(map[string]int, len(snap.Entries))
	counts := make(map[string]int, len(snap.Entries))
	for _, f := range snap.Feedback {
		totals[f.BeerID] += scoring.Total(f)
		counts[f.BeerID]++
	}

	out := make([]EntryStanding, len(snap.Entries))
	for i, e := range snap.Entries {
		s := EntryStanding{Entry: e, Count: counts[e.ID]}
		if s.Count > 0 {
			s.Avg = float64(totals[e.ID]) / float64(s.Count)
		}
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Avg > out[j].Avg
	})
	return out
}

// Brewers returns the brewer leaderboard, sorted descending by average
// total score across every scorecard naming that brewer. Ties keep the
// order brewers were first encountered in the feedback stream.
func Brewers(snap model.Snapshot) []BrewerStanding {
	type acc struct {
		total int
		count int
	}
	sums := make(map[string]*acc)
	order := make([]string, 0)
	for _, f := range snap.Feedback {
		a, ok := sums[f.BrewerName]
		if !ok {
			a = &acc{}
			sums[f.BrewerName] = a
			order = append(order, f.BrewerName)
		}
		a.total += scoring.Total(f)
		a.count++
	}

	out := make([]BrewerStanding, 0, len(order))
	for _, name := range order {
		a := sums[name]
		out = append(out, BrewerStanding{
			Name:    name,
			Avg:     float64(a.total) / float64(a.count),
			Reviews: a.count,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Avg > out[j].Avg
	})
	return out
}

var styleCategory = regexp.MustCompile(`^(\d+)`)

const uncategorized = 999

// FlightOrder returns entries sorted by the numeric prefix of their style
// label (BJCP category number), for serving lighter styles first. Styles
// without a numeric prefix sort last; the sort is stable so registration
// order breaks ties.
func FlightOrder(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return categoryValue(out[i].Style) < categoryValue(out[j].Style)
	})
	return out
}

func categoryValue(style string) int {
	m := styleCategory.FindStringSubmatch(style)
	if m == nil {
		return uncategorized
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return uncategorized
	}
	return n
}
