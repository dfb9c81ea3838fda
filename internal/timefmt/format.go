// Package timefmt turns server timestamps into display fragments and
// past/upcoming classifications, always in one configured timezone.
//
// None of the functions here return errors: an unparseable timestamp yields a
// documented fallback (a sentinel DateParts, false, or the input echoed back)
// so that a bad record never breaks a page.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateParts is the date box shown next to announcements and events.
type DateParts struct {
	Month     string `json:"month"`
	Day       string `json:"day"`
	Weekday   string `json:"weekday,omitempty"`
	MonthYear string `json:"month_year,omitempty"`
	Full      string `json:"full,omitempty"`
}

var (
	invalidDateBox         = DateParts{Month: "---", Day: "--"}
	invalidDateBoxExtended = DateParts{Month: "---", Day: "--", Weekday: "---"}
)

const (
	layoutMonthYear = "January 2006"
	layoutFull      = "Monday, January 2, 2006"
	layoutClock     = "3:04 PM"
)

// Formatter evaluates timestamps in a fixed display location.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// New returns a Formatter for the IANA zone name timezone. An empty name
// means UTC; the host's local zone is never used.
func New(timezone string, opts ...Option) (*Formatter, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("timefmt: load timezone %q: %w", timezone, err)
		}
		loc = l
	}
	return NewInLocation(loc, opts...), nil
}

// NewInLocation returns a Formatter for an already resolved location.
func NewInLocation(loc *time.Location, opts ...Option) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	f := &Formatter{loc: loc, now: time.Now}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Location returns the display location.
func (f *Formatter) Location() *time.Location {
	return f.loc
}

// Now returns the current instant in the display location.
func (f *Formatter) Now() time.Time {
	return f.now().In(f.loc)
}

// Parse reads s as a timestamp and converts it into the display location.
// Strings without an explicit offset are taken as UTC.
func (f *Formatter) Parse(s string) (time.Time, bool) {
	t, ok := parseTimestamp(s)
	if !ok {
		return time.Time{}, false
	}
	return t.In(f.loc), true
}

// DateBox returns the upper-case short month and the unpadded day of month.
func (f *Formatter) DateBox(s string) DateParts {
	t, ok := f.Parse(s)
	if !ok {
		return invalidDateBox
	}
	return DateParts{
		Month: strings.ToUpper(t.Format("Jan")),
		Day:   strconv.Itoa(t.Day()),
	}
}

// DateBoxExtended adds weekday, "Month YYYY" and the long-form date.
func (f *Formatter) DateBoxExtended(s string) DateParts {
	t, ok := f.Parse(s)
	if !ok {
		return invalidDateBoxExtended
	}
	return DateParts{
		Month:     strings.ToUpper(t.Format("Jan")),
		Day:       strconv.Itoa(t.Day()),
		Weekday:   strings.ToUpper(t.Format("Mon")),
		MonthYear: t.Format(layoutMonthYear),
		Full:      t.Format(layoutFull),
	}
}

// FullDate returns "Weekday, Month D, YYYY", or s unchanged if it does not
// parse.
func (f *Formatter) FullDate(s string) string {
	t, ok := f.Parse(s)
	if !ok {
		return s
	}
	return t.Format(layoutFull)
}

// Time returns the 12-hour clock time, e.g. "9:05 AM".
func (f *Formatter) Time(s string) (string, bool) {
	t, ok := f.Parse(s)
	if !ok {
		return "", false
	}
	return t.Format(layoutClock), true
}

// IsPast reports whether s is strictly before now, compared at minute
// granularity. Unparseable input is never past.
func (f *Formatter) IsPast(s string) bool {
	t, ok := f.Parse(s)
	if !ok {
		return false
	}
	return t.Truncate(time.Minute).Before(f.Now().Truncate(time.Minute))
}

// IsToday reports whether s falls on today's calendar date.
func (f *Formatter) IsToday(s string) bool {
	t, ok := f.Parse(s)
	if !ok {
		return false
	}
	return dayDistance(f.Now(), t) == 0
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	time.DateOnly,
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
