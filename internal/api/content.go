package api

import (
	"context"
	"net/url"
	"slices"
	"strconv"

	"sbccweb/internal/model"
)

// TimeFilter selects which events the server returns.
type TimeFilter string

const (
	TimeFilterAll      TimeFilter = "all"
	TimeFilterUpcoming TimeFilter = "upcoming"
	TimeFilterPast     TimeFilter = "past"
)

// ParseTimeFilter maps a query value onto a TimeFilter; anything unknown is
// TimeFilterAll.
func ParseTimeFilter(s string) TimeFilter {
	switch TimeFilter(s) {
	case TimeFilterUpcoming, TimeFilterPast:
		return TimeFilter(s)
	default:
		return TimeFilterAll
	}
}

// AnnouncementQuery filters ListAnnouncements. Zero values are omitted.
type AnnouncementQuery struct {
	Limit    int
	Ministry string
}

// EventQuery filters ListEvents. Zero values are omitted, except TimeFilter
// which defaults to TimeFilterAll.
type EventQuery struct {
	Limit      int
	EventType  string
	TimeFilter TimeFilter
	Ministry   string
}

// ListAnnouncements returns published announcements, newest first.
func (c *Client) ListAnnouncements(ctx context.Context, q AnnouncementQuery) ([]model.Announcement, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Ministry != "" {
		params.Set("ministry", q.Ministry)
	}

	var page model.Page[model.Announcement]
	if err := c.get(ctx, "/public/announcements/", params, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []model.Announcement{}, nil
	}
	return page.Results, nil
}

// ListEvents returns events. The server sorts by date descending; upcoming
// events are reversed so the soonest comes first.
func (c *Client) ListEvents(ctx context.Context, q EventQuery) ([]model.Event, error) {
	filter := q.TimeFilter
	if filter == "" {
		filter = TimeFilterAll
	}

	params := url.Values{}
	params.Set("time_filter", string(filter))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.EventType != "" {
		params.Set("event_type", q.EventType)
	}
	if q.Ministry != "" {
		params.Set("ministry", q.Ministry)
	}

	var page model.Page[model.Event]
	if err := c.get(ctx, "/public/events/", params, &page); err != nil {
		return nil, err
	}
	events := page.Results
	if events == nil {
		events = []model.Event{}
	}
	if filter == TimeFilterUpcoming {
		slices.Reverse(events)
	}
	return events, nil
}

// GetSettings returns the site settings singleton.
func (c *Client) GetSettings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	if err := c.get(ctx, "/public/settings/", nil, &s); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// ListTeam returns the staff and ministry leaders.
func (c *Client) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	var team []model.TeamMember
	if err := c.get(ctx, "/public/team/", nil, &team); err != nil {
		return nil, err
	}
	if team == nil {
		team = []model.TeamMember{}
	}
	return team, nil
}
