// Package schedule expands the configured weekly services into concrete
// occurrences in the display timezone.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"sbccweb/internal/config"
	appLog "sbccweb/internal/log"
)

// maxOccurrences caps expansion of a single rule.
const maxOccurrences = 500

// Service is one recurring service with a parsed rule.
type Service struct {
	Name     string
	Location string
	Duration time.Duration
	opt      rrule.ROption
}

// Occurrence is a single instance of a service.
type Occurrence struct {
	Name     string    `json:"name"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Schedule holds services and the location their rules are evaluated in.
type Schedule struct {
	loc      *time.Location
	services []Service
}

// New parses every rule in services against loc; any rule or start date that
// does not parse is an error.
//
// Each rule is anchored once: a DTSTART inside the rule wins, then the
// service's start date (local midnight), then a fixed reference Sunday.
func New(services []config.ServiceConfig, loc *time.Location) (*Schedule, error) {
	if loc == nil {
		return nil, errors.New("schedule: location is nil")
	}
	s := &Schedule{loc: loc, services: make([]Service, 0, len(services))}
	for _, sc := range services {
		opt, err := rrule.StrToROptionInLocation(sc.RRule, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule: service %q: %w", sc.Name, err)
		}
		if opt.Dtstart.IsZero() {
			anchor, err := anchorFor(sc.Start, loc)
			if err != nil {
				return nil, fmt.Errorf("schedule: service %q: %w", sc.Name, err)
			}
			opt.Dtstart = anchor
		}
		if _, err := rrule.NewRRule(*opt); err != nil {
			return nil, fmt.Errorf("schedule: service %q: %w", sc.Name, err)
		}

		dur := time.Duration(sc.DurationMinutes) * time.Minute
		if dur <= 0 {
			dur = time.Hour
		}
		s.services = append(s.services, Service{
			Name:     sc.Name,
			Location: sc.Location,
			Duration: dur,
			opt:      *opt,
		})
	}
	return s, nil
}

func anchorFor(start string, loc *time.Location) (time.Time, error) {
	start = strings.TrimSpace(start)
	if start == "" {
		// Fixed reference Sunday; INTERVAL counts from the same week for
		// every query window.
		return time.Date(2000, time.January, 2, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, start, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("start %q: %w", start, err)
	}
	return t, nil
}

// Between returns every occurrence starting in [from, to], sorted by start.
func (s *Schedule) Between(from, to time.Time) []Occurrence {
	out := make([]Occurrence, 0)
	if to.Before(from) {
		return out
	}

	for _, svc := range s.services {
		r, err := rrule.NewRRule(svc.opt)
		if err != nil {
			appLog.Error("schedule: build rule", err, "service", svc.Name)
			continue
		}

		starts := r.Between(from, to, true)
		if len(starts) > maxOccurrences {
			starts = starts[:maxOccurrences]
		}
		for _, st := range starts {
			st = st.In(s.loc)
			out = append(out, Occurrence{
				Name:     svc.Name,
				Location: svc.Location,
				Start:    st,
				End:      st.Add(svc.Duration),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Upcoming returns occurrences from now through the next weeks weeks.
func (s *Schedule) Upcoming(now time.Time, weeks int) []Occurrence {
	if weeks <= 0 {
		weeks = 1
	}
	return s.Between(now, now.AddDate(0, 0, 7*weeks))
}
