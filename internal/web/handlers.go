package web

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"sbccweb/internal/api"
	"sbccweb/internal/ics"
	appLog "sbccweb/internal/log"
	"sbccweb/internal/model"
)

// User-facing copy for prayer request failures.
const (
	msgPrayerReceived  = "Prayer request received successfully."
	msgPrayerThrottled = "Too many requests. Please wait a moment and try again."
	msgPrayerInvalid   = "Please check your prayer request and try again."
	msgPrayerFailed    = "Failed to send request. Please try again."
)

const (
	defaultAnnouncementLimit = 20
	maxAnnouncementLimit     = 50
	defaultEventLimit        = 50
	maxEventLimit            = 100
	homeAnnouncementLimit    = 3
	defaultScheduleWeeks     = 4
	maxScheduleWeeks         = 12
)

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Current())
}

// handleAnnouncements returns announcements with date boxes and relative
// labels.
//
// GET /api/announcements?limit=20&ministry=youth
func (s *Server) handleAnnouncements(c *gin.Context) {
	q := api.AnnouncementQuery{
		Limit:    clampInt(parseIntDefault(c.Query("limit"), defaultAnnouncementLimit), 1, maxAnnouncementLimit),
		Ministry: strings.TrimSpace(c.Query("ministry")),
	}

	s.cached(c, func(ctx context.Context) (any, error) {
		items, err := s.content.ListAnnouncements(ctx, q)
		if err != nil {
			return nil, err
		}
		views := s.announcementViews(items)
		resp := announcementsResponse{Announcements: views, Rest: []announcementView{}}
		if len(views) > 0 {
			resp.Featured = &views[0]
			resp.Rest = views[1:]
		}
		return resp, nil
	}, upstreamFailure(c, "announcements"))
}

// handleEvents returns events with display fragments, month groups and
// upcoming/past counts.
//
// GET /api/events?limit=50&time_filter=all&event_type=service&ministry=youth
func (s *Server) handleEvents(c *gin.Context) {
	q := api.EventQuery{
		Limit:      clampInt(parseIntDefault(c.Query("limit"), defaultEventLimit), 1, maxEventLimit),
		EventType:  strings.TrimSpace(c.Query("event_type")),
		TimeFilter: api.ParseTimeFilter(c.Query("time_filter")),
		Ministry:   strings.TrimSpace(c.Query("ministry")),
	}

	s.cached(c, func(ctx context.Context) (any, error) {
		events, err := s.content.ListEvents(ctx, q)
		if err != nil {
			return nil, err
		}
		return s.buildEvents(events), nil
	}, upstreamFailure(c, "events"))
}

func (s *Server) handleTeam(c *gin.Context) {
	s.cached(c, func(ctx context.Context) (any, error) {
		return s.content.ListTeam(ctx)
	}, upstreamFailure(c, "team"))
}

// handleSchedule lists the next occurrences of the configured services.
//
// GET /api/schedule?weeks=4
func (s *Server) handleSchedule(c *gin.Context) {
	if s.schedule == nil {
		c.JSON(http.StatusOK, []scheduleItem{})
		return
	}
	weeks := clampInt(parseIntDefault(c.Query("weeks"), defaultScheduleWeeks), 1, maxScheduleWeeks)

	occ := s.schedule.Upcoming(s.fmt.Now(), weeks)
	items := make([]scheduleItem, 0, len(occ))
	for _, o := range occ {
		start := o.Start.Format(time.RFC3339)
		clock, _ := s.fmt.Time(start)
		items = append(items, scheduleItem{
			Name:     o.Name,
			Location: o.Location,
			Start:    start,
			End:      o.End.Format(time.RFC3339),
			DateBox:  s.fmt.DateBoxExtended(start),
			Time:     clock,
			Relative: optionalString(s.fmt.Relative(start)),
		})
	}
	c.JSON(http.StatusOK, items)
}

// handleHome assembles the landing page: settings from the provider plus the
// latest announcements and the next upcoming event, fetched concurrently. A
// failed section is reported in "errors" rather than failing the page.
func (s *Server) handleHome(c *gin.Context) {
	s.cached(c, func(ctx context.Context) (any, error) {
		var (
			wg            sync.WaitGroup
			announcements []model.Announcement
			upcoming      []model.Event
			annErr        error
			evErr         error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			announcements, annErr = s.content.ListAnnouncements(ctx, api.AnnouncementQuery{Limit: homeAnnouncementLimit})
		}()
		go func() {
			defer wg.Done()
			upcoming, evErr = s.content.ListEvents(ctx, api.EventQuery{Limit: 1, TimeFilter: api.TimeFilterUpcoming})
		}()
		wg.Wait()

		resp := homeResponse{
			Settings:      s.settings.Current(),
			Announcements: []announcementView{},
		}
		if annErr != nil {
			upstreamFailureLog(c, annErr)
			resp.Errors = append(resp.Errors, "announcements")
		} else {
			resp.Announcements = s.announcementViews(announcements)
		}
		if evErr != nil {
			upstreamFailureLog(c, evErr)
			resp.Errors = append(resp.Errors, "events")
		} else if len(upcoming) > 0 {
			v := s.eventView(upcoming[0])
			v.IsNext = !v.IsPast
			resp.NextEvent = &v
		}
		return resp, nil
	}, upstreamFailure(c, "home"))
}

func upstreamFailureLog(c *gin.Context, err error) {
	appLog.Error("cms request failed", err, "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey))
}

// prayerForm is the JSON body accepted from the prayer request form.
type prayerForm struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	IsAnonymous    bool   `json:"is_anonymous"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	RequesterPhone string `json:"requester_phone"`
}

// handlePrayerRequest forwards a prayer request and turns failures into copy
// the form can show as-is.
//
// POST /api/prayer-requests
func (s *Server) handlePrayerRequest(c *gin.Context) {
	var form prayerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.content.SubmitPrayerRequest(c.Request.Context(), model.PrayerRequest{
		Title:          form.Title,
		Description:    form.Description,
		Category:       form.Category,
		IsAnonymous:    form.IsAnonymous,
		RequesterName:  form.RequesterName,
		RequesterEmail: form.RequesterEmail,
		RequesterPhone: form.RequesterPhone,
	})
	if err == nil {
		c.JSON(http.StatusCreated, gin.H{"message": msgPrayerReceived, "data": created})
		return
	}

	if vErr, ok := api.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
		return
	}

	upstreamFailureLog(c, err)
	status, msg := prayerErrorCopy(err)
	writeError(c, status, msg)
}

// prayerErrorCopy maps a submission error to a status and message for the
// form.
func prayerErrorCopy(err error) (int, string) {
	apiErr, ok := api.AsError(err)
	if !ok {
		return http.StatusBadGateway, msgPrayerFailed
	}
	switch {
	case apiErr.IsRateLimited():
		return http.StatusTooManyRequests, msgPrayerThrottled
	case apiErr.IsValidation():
		if msg := apiErr.Data.ValidationMessage(); msg != "" {
			return http.StatusBadRequest, msg
		}
		return http.StatusBadRequest, msgPrayerInvalid
	default:
		return http.StatusBadGateway, msgPrayerFailed
	}
}

// handleCalendar serves all events as an iCalendar feed.
//
// GET /events.ics
func (s *Server) handleCalendar(c *gin.Context) {
	events, err := s.content.ListEvents(c.Request.Context(), api.EventQuery{Limit: maxEventLimit, TimeFilter: api.TimeFilterAll})
	if err != nil {
		upstreamFailure(c, "events")(err)
		return
	}
	body := ics.BuildFeed(events, s.fmt, ics.FeedOptions{
		Name:      s.calendarName,
		UIDDomain: hostOnly(c.Request.Host),
	})
	c.Header("Content-Disposition", `inline; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func hostOnly(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
