package model

// Announcement is a published notice from the content API. PublishAt is kept
// as the raw ISO-8601 string the server sent; formatting happens in
// internal/timefmt against the configured display timezone.
type Announcement struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	Audience     string  `json:"audience,omitempty"` // "all" | "ministry"
	MinistryName *string `json:"ministry_name"`
	PublishAt    string  `json:"publish_at"`
	ExpireAt     *string `json:"expire_at"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// Event is a single church event. Date is the start timestamp as sent by the
// server; EndDate is optional.
type Event struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	EndDate      *string `json:"end_date,omitempty"`
	Location     string  `json:"location"`
	EventType    string  `json:"event_type"`
	MinistryName *string `json:"ministry_name,omitempty"`
}

// EventTypeLabels maps backend event_type codes to display labels.
var EventTypeLabels = map[string]string{
	"service":        "Sunday Service",
	"bible_study":    "Bible Study",
	"prayer_meeting": "Prayer Meeting",
	"fellowship":     "Fellowship",
	"outreach":       "Outreach",
	"other":          "Event",
}

// EventTypeLabel returns the display label for code, or code itself when it
// is not a known type.
func EventTypeLabel(code string) string {
	if l, ok := EventTypeLabels[code]; ok {
		return l
	}
	return code
}

// TeamMember is a staff or ministry leader shown on the About page.
type TeamMember struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Ministry string `json:"ministry,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Photo    string `json:"photo,omitempty"`
	Email    string `json:"email,omitempty"`
	Order    int    `json:"order,omitempty"`
}

// Settings is the singleton site configuration managed in the CMS.
type Settings struct {
	AppName          string  `json:"app_name"`
	ChurchName       string  `json:"church_name"`
	Tagline          string  `json:"tagline"`
	Logo             string  `json:"logo"`
	Banner           *string `json:"banner"`
	Favicon          *string `json:"favicon"`
	LoginBackground  *string `json:"login_background"`
	Mission          string  `json:"mission"`
	Vision           string  `json:"vision"`
	History          string  `json:"history"`
	StatementOfFaith string  `json:"statement_of_faith"`
	ServiceSchedule  string  `json:"service_schedule"`
	Address          string  `json:"address"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	FacebookURL      *string `json:"facebook_url"`
	YoutubeURL       *string `json:"youtube_url"`
	InstagramURL     *string `json:"instagram_url"`
}

// PrayerRequest is the client-side field set of the prayer request form.
type PrayerRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category,omitempty"`
	IsAnonymous    bool   `json:"is_anonymous"`
	RequesterName  string `json:"requester_name,omitempty"`
	RequesterEmail string `json:"requester_email,omitempty"`
	RequesterPhone string `json:"requester_phone,omitempty"`
}

// PrayerCategories lists the category codes offered by the prayer form.
var PrayerCategories = []string{
	"health",
	"family",
	"financial",
	"spiritual",
	"relationships",
	"work",
	"grief",
	"thanksgiving",
	"guidance",
	"other",
}

// Page is the list envelope used by the announcements and events endpoints.
type Page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
