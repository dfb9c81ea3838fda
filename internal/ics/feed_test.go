package ics

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"
	"github.com/go-playground/assert/v2"

	"sbccweb/internal/model"
	"sbccweb/internal/timefmt"
)

func strPtr(s string) *string { return &s }

func newFormatter(t *testing.T) *timefmt.Formatter {
	t.Helper()
	now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	f, err := timefmt.New("Asia/Manila", timefmt.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("timefmt.New: %v", err)
	}
	return f
}

func TestBuildFeed(t *testing.T) {
	events := []model.Event{
		{ID: 1, Title: "Sunday Service", Description: "Worship and the Word", Date: "2024-03-17T01:00:00Z", EndDate: strPtr("2024-03-17T03:00:00Z"), Location: "Main Hall", EventType: "service"},
		{ID: 2, Title: "Prayer Night", Date: "2024-03-20T11:00:00Z"},
		{ID: 3, Title: "Broken", Date: "TBA"},
	}

	out := BuildFeed(events, newFormatter(t), FeedOptions{Name: "SBCC Events", UIDDomain: "sbcc.example.org"})

	assert.Equal(t, true, strings.Contains(out, "X-WR-CALNAME:SBCC Events"))
	assert.Equal(t, true, strings.Contains(out, "X-WR-TIMEZONE:Asia/Manila"))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(cal.Events()))

	first := cal.Events()[0]
	assert.Equal(t, "event-1@sbcc.example.org", first.Id())
	start, err := first.GetStartAt()
	assert.Equal(t, nil, err)
	assert.Equal(t, time.Date(2024, time.March, 17, 1, 0, 0, 0, time.UTC).Unix(), start.Unix())
	end, _ := first.GetEndAt()
	assert.Equal(t, 2*time.Hour, end.Sub(start))
	assert.Equal(t, "Main Hall", first.GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "Sunday Service", first.GetProperty(ical.ComponentPropertyCategories).Value)

	second := cal.Events()[1]
	s2, _ := second.GetStartAt()
	e2, _ := second.GetEndAt()
	assert.Equal(t, time.Hour, e2.Sub(s2))
}

func TestBuildFeedEndBeforeStartUsesDefault(t *testing.T) {
	events := []model.Event{{ID: 9, Title: "Odd", Date: "2024-03-17T05:00:00Z", EndDate: strPtr("2024-03-17T04:00:00Z")}}

	cal, err := ical.ParseCalendar(strings.NewReader(BuildFeed(events, newFormatter(t), FeedOptions{})))

	assert.Equal(t, nil, err)
	ev := cal.Events()[0]
	assert.Equal(t, "event-9@sbccweb.local", ev.Id())
	s, _ := ev.GetStartAt()
	e, _ := ev.GetEndAt()
	assert.Equal(t, time.Hour, e.Sub(s))
}

func TestBuildFeedEmpty(t *testing.T) {
	out := BuildFeed(nil, newFormatter(t), FeedOptions{Name: "Empty"})
	assert.Equal(t, true, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Equal(t, false, strings.Contains(out, "BEGIN:VEVENT"))
}
