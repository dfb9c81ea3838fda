package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"sbccweb/internal/model"
)

// Local validation messages for prayer requests.
const (
	MsgTitleRequired       = "Please enter a title for your prayer request."
	MsgDescriptionRequired = "Please describe your prayer request."
	MsgNameRequired        = "Please provide your name or choose to submit anonymously."
	MsgCategoryInvalid     = "Please choose a prayer category from the list."
)

// prayerPayload is the body expected by the submit endpoint. Requester fields
// are omitted entirely for anonymous submissions.
type prayerPayload struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	IsAnonymous    bool    `json:"is_anonymous"`
	Category       string  `json:"category,omitempty"`
	RequesterName  *string `json:"requester_name,omitempty"`
	RequesterEmail *string `json:"requester_email,omitempty"`
	RequesterPhone *string `json:"requester_phone,omitempty"`
}

// ValidatePrayerRequest checks pr without touching the network.
func ValidatePrayerRequest(pr model.PrayerRequest) error {
	if strings.TrimSpace(pr.Title) == "" {
		return &ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	if strings.TrimSpace(pr.Description) == "" {
		return &ValidationError{Field: "description", Message: MsgDescriptionRequired}
	}
	if c := strings.TrimSpace(pr.Category); c != "" && !slices.Contains(model.PrayerCategories, c) {
		return &ValidationError{Field: "category", Message: MsgCategoryInvalid}
	}
	if !pr.IsAnonymous && strings.TrimSpace(pr.RequesterName) == "" {
		return &ValidationError{Field: "requester_name", Message: MsgNameRequired}
	}
	return nil
}

func newPrayerPayload(pr model.PrayerRequest) prayerPayload {
	p := prayerPayload{
		Title:       strings.TrimSpace(pr.Title),
		Description: strings.TrimSpace(pr.Description),
		IsAnonymous: pr.IsAnonymous,
		Category:    strings.TrimSpace(pr.Category),
	}
	if pr.IsAnonymous {
		return p
	}
	p.RequesterName = optional(pr.RequesterName)
	p.RequesterEmail = optional(pr.RequesterEmail)
	p.RequesterPhone = optional(pr.RequesterPhone)
	return p
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SubmitPrayerRequest validates pr locally and posts it. The created resource
// is returned as sent by the server.
func (c *Client) SubmitPrayerRequest(ctx context.Context, pr model.PrayerRequest) (json.RawMessage, error) {
	if err := ValidatePrayerRequest(pr); err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPost, "/public/prayer-requests/submit/", nil, newPrayerPayload(pr))
}
