package timefmt

import (
	"fmt"
	"time"
)

// Relative returns a friendly label for the calendar-day distance between s
// and today, both observed in the display location. It reports false when s
// does not parse or is 30 or more days away in either direction.
func (f *Formatter) Relative(s string) (string, bool) {
	t, ok := f.Parse(s)
	if !ok {
		return "", false
	}
	return relativeLabel(dayDistance(f.Now(), t))
}

// relativeLabel maps a signed day distance (negative is past) onto a label.
func relativeLabel(days int) (string, bool) {
	n := days
	if n < 0 {
		n = -n
	}
	past := days < 0

	switch {
	case n == 0:
		return "Today", true
	case n == 1 && past:
		return "Yesterday", true
	case n == 1:
		return "Tomorrow", true
	case n < 7 && past:
		return fmt.Sprintf("%d days ago", n), true
	case n < 7:
		return fmt.Sprintf("In %d days", n), true
	case n < 30:
		weeks := n / 7
		unit := "week"
		if weeks > 1 {
			unit = "weeks"
		}
		if past {
			return fmt.Sprintf("%d %s ago", weeks, unit), true
		}
		return fmt.Sprintf("In %d %s", weeks, unit), true
	default:
		return "", false
	}
}

// dayDistance returns the number of calendar days from a to b using each
// value's own wall-clock date. Both are expected in the same location.
func dayDistance(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
