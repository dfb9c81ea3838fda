package timefmt

import (
	"fmt"
	"sort"
	"time"
)

// MonthGroup is a bucket of records sharing one calendar month in the
// display location.
type MonthGroup[T any] struct {
	Key        string `json:"key"` // "YYYY-MM"
	Label      string `json:"label"`
	ShortLabel string `json:"short_label"`
	Year       int    `json:"year"`
	Events     []T    `json:"events"`
	// IsPast is true only when every record in the group is past.
	IsPast bool `json:"is_past"`
}

// GroupByMonth buckets records by the month of date(record), newest month
// first. Records keep their input order inside a group; records whose date
// does not parse are left out.
func GroupByMonth[T any](f *Formatter, records []T, date func(T) string) []MonthGroup[T] {
	index := make(map[string]int)
	groups := make([]MonthGroup[T], 0)

	for _, rec := range records {
		raw := date(rec)
		t, ok := f.Parse(raw)
		if !ok {
			continue
		}
		key := fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))

		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup[T]{
				Key:        key,
				Label:      t.Format(layoutMonthYear),
				ShortLabel: t.Format("Jan"),
				Year:       t.Year(),
				IsPast:     true,
			})
		}

		g := &groups[i]
		g.Events = append(g.Events, rec)
		if !f.IsPast(raw) {
			g.IsPast = false
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Key > groups[b].Key
	})
	return groups
}

// SplitByPast partitions records into upcoming and past, preserving order.
func SplitByPast[T any](f *Formatter, records []T, date func(T) string) (upcoming, past []T) {
	upcoming = make([]T, 0, len(records))
	past = make([]T, 0)
	for _, rec := range records {
		if f.IsPast(date(rec)) {
			past = append(past, rec)
			continue
		}
		upcoming = append(upcoming, rec)
	}
	return upcoming, past
}

// NextUpcoming returns the soonest record that is not past. Ties keep input
// order; unparseable records are ignored.
func NextUpcoming[T any](f *Formatter, records []T, date func(T) string) (T, bool) {
	var (
		best  T
		bestT time.Time
		found bool
	)
	for _, rec := range records {
		d := date(rec)
		t, ok := f.Parse(d)
		if !ok || f.IsPast(d) {
			continue
		}
		if !found || t.Before(bestT) {
			best, bestT, found = rec, t, true
		}
	}
	return best, found
}
