package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/assert/v2"

	"sbccweb/internal/config"
)

func manila(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

func TestUpcomingWeeklyService(t *testing.T) {
	loc := manila(t)
	s, err := New([]config.ServiceConfig{
		{Name: "Sunday Worship", RRule: "FREQ=WEEKLY;BYDAY=SU;BYHOUR=9;BYMINUTE=0;BYSECOND=0", DurationMinutes: 120},
	}, loc)
	assert.Equal(t, nil, err)

	// Wednesday 2024-03-06 10:00 Manila.
	now := time.Date(2024, time.March, 6, 10, 0, 0, 0, loc)
	got := s.Upcoming(now, 2)

	assert.Equal(t, 2, len(got))
	assert.Equal(t, time.Date(2024, time.March, 10, 9, 0, 0, 0, loc).Unix(), got[0].Start.Unix())
	assert.Equal(t, time.Date(2024, time.March, 17, 9, 0, 0, 0, loc).Unix(), got[1].Start.Unix())
	assert.Equal(t, 2*time.Hour, got[0].End.Sub(got[0].Start))
	assert.Equal(t, "Asia/Manila", got[0].Start.Location().String())
}

func TestBetweenMergesServicesInOrder(t *testing.T) {
	loc := manila(t)
	s, err := New([]config.ServiceConfig{
		{Name: "Sunday Worship", RRule: "FREQ=WEEKLY;BYDAY=SU;BYHOUR=9;BYMINUTE=0;BYSECOND=0", DurationMinutes: 120},
		{Name: "Prayer Meeting", RRule: "FREQ=WEEKLY;BYDAY=WE;BYHOUR=19;BYMINUTE=0;BYSECOND=0", DurationMinutes: 60},
	}, loc)
	assert.Equal(t, nil, err)

	from := time.Date(2024, time.March, 9, 0, 0, 0, 0, loc)
	to := time.Date(2024, time.March, 14, 0, 0, 0, 0, loc)
	got := s.Between(from, to)

	assert.Equal(t, 2, len(got))
	assert.Equal(t, "Sunday Worship", got[0].Name)
	assert.Equal(t, "Prayer Meeting", got[1].Name)
	assert.Equal(t, 19, got[1].Start.Hour())
}

func TestNewRejectsBadRule(t *testing.T) {
	_, err := New([]config.ServiceConfig{{Name: "Broken", RRule: "FREQ=SOMETIMES"}}, time.UTC)
	assert.NotEqual(t, nil, err)
}

func TestBetweenReversedRange(t *testing.T) {
	s, _ := New(nil, time.UTC)
	now := time.Now()
	assert.Equal(t, 0, len(s.Between(now, now.Add(-time.Hour))))
}

func biweeklyStarts(t *testing.T, s *Schedule, from time.Time) []string {
	t.Helper()
	out := make([]string, 0)
	for _, o := range s.Upcoming(from, 4) {
		out = append(out, o.Start.Format("2006-01-02 15:04"))
	}
	return out
}

func TestBiweeklyRuleIsStableAcrossWindows(t *testing.T) {
	loc := manila(t)
	s, err := New([]config.ServiceConfig{
		{Name: "Communion", RRule: "FREQ=WEEKLY;INTERVAL=2;BYDAY=SU;BYHOUR=9;BYMINUTE=0;BYSECOND=0"},
	}, loc)
	assert.Equal(t, nil, err)

	first := biweeklyStarts(t, s, time.Date(2024, time.March, 4, 0, 0, 0, 0, loc))
	second := biweeklyStarts(t, s, time.Date(2024, time.March, 11, 0, 0, 0, 0, loc))

	assert.Equal(t, []string{"2024-03-10 09:00", "2024-03-24 09:00"}, first)
	assert.Equal(t, []string{"2024-03-24 09:00", "2024-04-07 09:00"}, second)
}

func TestBiweeklyRuleHonorsStartDate(t *testing.T) {
	loc := manila(t)
	s, err := New([]config.ServiceConfig{
		{Name: "Communion", RRule: "FREQ=WEEKLY;INTERVAL=2;BYDAY=SU;BYHOUR=9;BYMINUTE=0;BYSECOND=0", Start: "2024-03-17"},
	}, loc)
	assert.Equal(t, nil, err)

	assert.Equal(t, []string{"2024-03-17 09:00", "2024-03-31 09:00"}, biweeklyStarts(t, s, time.Date(2024, time.March, 4, 0, 0, 0, 0, loc)))
	assert.Equal(t, []string{"2024-03-17 09:00", "2024-03-31 09:00"}, biweeklyStarts(t, s, time.Date(2024, time.March, 11, 0, 0, 0, 0, loc)))
}

func TestRuleDtstartWinsOverStartDate(t *testing.T) {
	loc := manila(t)
	s, err := New([]config.ServiceConfig{
		{Name: "Communion", RRule: "DTSTART=20240303T090000;FREQ=WEEKLY;INTERVAL=2;BYDAY=SU", Start: "2024-03-10"},
	}, loc)
	assert.Equal(t, nil, err)

	assert.Equal(t, []string{"2024-03-17 09:00", "2024-03-31 09:00"}, biweeklyStarts(t, s, time.Date(2024, time.March, 4, 0, 0, 0, 0, loc)))
}

func TestNewRejectsBadStartDate(t *testing.T) {
	_, err := New([]config.ServiceConfig{{Name: "Sunday", RRule: "FREQ=WEEKLY;BYDAY=SU", Start: "March 3"}}, time.UTC)
	assert.NotEqual(t, nil, err)
}
