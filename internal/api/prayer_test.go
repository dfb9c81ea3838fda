package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"sbccweb/internal/model"
)

func TestSubmitPrayerRequestRequiresName(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitPrayerRequest(context.Background(), model.PrayerRequest{
		Title:         "Healing",
		Description:   "For my mother",
		IsAnonymous:   false,
		RequesterName: "   ",
	})

	vErr, ok := AsValidationError(err)
	assert.Equal(t, true, ok)
	assert.Equal(t, "requester_name", vErr.Field)
	assert.Equal(t, MsgNameRequired, vErr.Message)
	assert.Equal(t, 0, calls)
}

func TestValidatePrayerRequest(t *testing.T) {
	base := model.PrayerRequest{Title: "t", Description: "d", IsAnonymous: true}
	assert.Equal(t, nil, ValidatePrayerRequest(base))

	noTitle := base
	noTitle.Title = ""
	vErr, _ := AsValidationError(ValidatePrayerRequest(noTitle))
	assert.Equal(t, "title", vErr.Field)

	noDesc := base
	noDesc.Description = " "
	vErr, _ = AsValidationError(ValidatePrayerRequest(noDesc))
	assert.Equal(t, "description", vErr.Field)
}

func TestSubmitPrayerRequestAnonymousOmitsRequester(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/public/prayer-requests/submit/", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 7, "status": "pending"}`))
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL).SubmitPrayerRequest(context.Background(), model.PrayerRequest{
		Title:          "Guidance",
		Description:    "New job",
		Category:       "work",
		IsAnonymous:    true,
		RequesterName:  "Maria",
		RequesterEmail: "maria@example.com",
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, `{"id": 7, "status": "pending"}`, string(created))
	assert.Equal(t, "Guidance", got["title"])
	assert.Equal(t, "New job", got["description"])
	assert.Equal(t, "work", got["category"])
	assert.Equal(t, true, got["is_anonymous"])
	_, hasName := got["requester_name"]
	_, hasEmail := got["requester_email"]
	_, hasPhone := got["requester_phone"]
	assert.Equal(t, false, hasName)
	assert.Equal(t, false, hasEmail)
	assert.Equal(t, false, hasPhone)
}

func TestSubmitPrayerRequestNamed(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 8}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitPrayerRequest(context.Background(), model.PrayerRequest{
		Title:          "Family",
		Description:    "Reconciliation",
		RequesterName:  " Jose ",
		RequesterPhone: "0917 222 2222",
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, "Jose", got["requester_name"])
	assert.Equal(t, "0917 222 2222", got["requester_phone"])
	assert.Equal(t, false, got["is_anonymous"])
	_, hasEmail := got["requester_email"]
	_, hasCategory := got["category"]
	assert.Equal(t, false, hasEmail)
	assert.Equal(t, false, hasCategory)
}

func TestSubmitPrayerRequestServerValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"category": ["Invalid choice"]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitPrayerRequest(context.Background(), model.PrayerRequest{
		Title: "t", Description: "d", Category: "grief", IsAnonymous: true,
	})

	apiErr, ok := AsError(err)
	assert.Equal(t, true, ok)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "category: Invalid choice", apiErr.Data.ValidationMessage())
}

func TestSubmitPrayerRequestRejectsUnknownCategory(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitPrayerRequest(context.Background(), model.PrayerRequest{
		Title: "t", Description: "d", Category: "bogus", IsAnonymous: true,
	})

	vErr, ok := AsValidationError(err)
	assert.Equal(t, true, ok)
	assert.Equal(t, "category", vErr.Field)
	assert.Equal(t, MsgCategoryInvalid, vErr.Message)
	assert.Equal(t, 0, calls)
}

func TestValidatePrayerRequestCategories(t *testing.T) {
	base := model.PrayerRequest{Title: "t", Description: "d", IsAnonymous: true}
	for _, c := range append([]string{"", " health "}, model.PrayerCategories...) {
		pr := base
		pr.Category = c
		assert.Equal(t, nil, ValidatePrayerRequest(pr))
	}
}
