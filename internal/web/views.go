package web

import (
	"sbccweb/internal/model"
	"sbccweb/internal/timefmt"
)

type announcementView struct {
	model.Announcement
	DateBox  timefmt.DateParts `json:"date_box"`
	FullDate string            `json:"full_date"`
	Relative *string           `json:"relative,omitempty"`
}

type announcementsResponse struct {
	Announcements []announcementView `json:"announcements"`
	Featured      *announcementView  `json:"featured"`
	Rest          []announcementView `json:"rest"`
}

type eventView struct {
	model.Event
	TypeLabel string            `json:"type_label,omitempty"`
	DateBox   timefmt.DateParts `json:"date_box"`
	Time      *string           `json:"time"`
	Relative  *string           `json:"relative,omitempty"`
	IsPast    bool              `json:"is_past"`
	IsToday   bool              `json:"is_today"`
	IsNext    bool              `json:"is_next"`
}

type eventsResponse struct {
	Events        []eventView                     `json:"events"`
	Groups        []timefmt.MonthGroup[eventView] `json:"groups"`
	UpcomingCount int                             `json:"upcoming_count"`
	PastCount     int                             `json:"past_count"`
	NextEventID   *int64                          `json:"next_event_id"`
	Timezone      string                          `json:"timezone"`
}

type homeResponse struct {
	Settings      model.Settings     `json:"settings"`
	Announcements []announcementView `json:"announcements"`
	NextEvent     *eventView         `json:"next_event"`
	Errors        []string           `json:"errors,omitempty"`
}

func (h homeResponse) complete() bool { return len(h.Errors) == 0 }

type scheduleItem struct {
	Name     string            `json:"name"`
	Location string            `json:"location,omitempty"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	DateBox  timefmt.DateParts `json:"date_box"`
	Time     string            `json:"time"`
	Relative *string           `json:"relative,omitempty"`
}

func optionalString(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}

func (s *Server) announcementView(a model.Announcement) announcementView {
	return announcementView{
		Announcement: a,
		DateBox:      s.fmt.DateBox(a.PublishAt),
		FullDate:     s.fmt.FullDate(a.PublishAt),
		Relative:     optionalString(s.fmt.Relative(a.PublishAt)),
	}
}

func (s *Server) announcementViews(items []model.Announcement) []announcementView {
	out := make([]announcementView, 0, len(items))
	for _, a := range items {
		out = append(out, s.announcementView(a))
	}
	return out
}

func (s *Server) eventView(e model.Event) eventView {
	label := ""
	if e.EventType != "" {
		label = model.EventTypeLabel(e.EventType)
	}
	return eventView{
		Event:     e,
		TypeLabel: label,
		DateBox:   s.fmt.DateBoxExtended(e.Date),
		Time:      optionalString(s.fmt.Time(e.Date)),
		Relative:  optionalString(s.fmt.Relative(e.Date)),
		IsPast:    s.fmt.IsPast(e.Date),
		IsToday:   s.fmt.IsToday(e.Date),
	}
}

func eventDate(v eventView) string { return v.Date }

// buildEvents derives the events page payload. The next event is the soonest
// one that has not started.
func (s *Server) buildEvents(events []model.Event) eventsResponse {
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, s.eventView(e))
	}

	resp := eventsResponse{Timezone: s.fmt.Location().String()}
	if next, ok := timefmt.NextUpcoming(s.fmt, views, eventDate); ok {
		id := next.ID
		resp.NextEventID = &id
		for i := range views {
			if views[i].ID == id {
				views[i].IsNext = true
				break
			}
		}
	}

	upcoming, past := timefmt.SplitByPast(s.fmt, views, eventDate)
	resp.UpcomingCount = len(upcoming)
	resp.PastCount = len(past)
	resp.Events = views
	resp.Groups = timefmt.GroupByMonth(s.fmt, views, eventDate)
	return resp
}
