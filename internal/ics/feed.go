// Package ics publishes church events as an iCalendar feed so visitors can
// subscribe from their calendar app.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "sbccweb/internal/log"
	"sbccweb/internal/model"
	"sbccweb/internal/timefmt"
)

const (
	productID = "-//SBCC//sbccweb//EN"
	// defaultDuration is used for events the CMS sends without an end.
	defaultDuration = time.Hour
)

// FeedOptions controls calendar-level properties of the feed.
type FeedOptions struct {
	// Name is the calendar title shown by clients (X-WR-CALNAME).
	Name string
	// UIDDomain is appended to event UIDs, e.g. "sbcc.example.org".
	UIDDomain string
}

// BuildFeed renders events as a VCALENDAR. Events whose start does not parse
// are skipped. Times are written in UTC; the display timezone is advertised
// through X-WR-TIMEZONE.
func BuildFeed(events []model.Event, f *timefmt.Formatter, opts FeedOptions) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(f.Location().String())

	domain := opts.UIDDomain
	if domain == "" {
		domain = "sbccweb.local"
	}
	stamp := f.Now().UTC()

	skipped := 0
	for _, ev := range events {
		start, ok := f.Parse(ev.Date)
		if !ok {
			skipped++
			continue
		}
		end := start.Add(defaultDuration)
		if ev.EndDate != nil {
			if e, ok := f.Parse(*ev.EndDate); ok && e.After(start) {
				end = e
			}
		}

		ve := cal.AddEvent(EventUID(ev.ID, domain))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(start.UTC())
		ve.SetEndAt(end.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.EventType != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, model.EventTypeLabel(ev.EventType))
		}
	}

	if skipped > 0 {
		appLog.Debug("ics feed: skipped events with unparseable dates", "skipped", skipped)
	}
	return cal.Serialize()
}

// EventUID returns the stable UID used for an event in the feed.
func EventUID(id int64, domain string) string {
	return fmt.Sprintf("event-%d@%s", id, strings.TrimSpace(domain))
}
