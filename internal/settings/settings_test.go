package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"sbccweb/internal/model"
)

type fakeSource struct {
	settings model.Settings
	err      error
	calls    int
}

func (f *fakeSource) GetSettings(context.Context) (model.Settings, error) {
	f.calls++
	return f.settings, f.err
}

func strPtr(s string) *string { return &s }

func TestProviderStartsWithDefaults(t *testing.T) {
	p := NewProvider(&fakeSource{})
	assert.Equal(t, DefaultSettings(), p.Current())
	assert.Equal(t, false, p.Loaded())
}

func TestRefreshMergesOverDefaults(t *testing.T) {
	src := &fakeSource{settings: model.Settings{
		ChurchName:  "Santa Barbara Community Church",
		Tagline:     "",
		Phone:       "(+63) 917-000-0000",
		FacebookURL: strPtr("https://facebook.com/sbcc"),
	}}
	p := NewProvider(src)

	err := p.Refresh(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, p.Loaded())
	got := p.Current()
	assert.Equal(t, "Santa Barbara Community Church", got.ChurchName)
	assert.Equal(t, DefaultSettings().Tagline, got.Tagline)
	assert.Equal(t, "(+63) 917-000-0000", got.Phone)
	assert.Equal(t, DefaultSettings().Mission, got.Mission)
	assert.Equal(t, "https://facebook.com/sbcc", *got.FacebookURL)
	assert.Equal(t, "SBCC", got.AppName)
}

func TestRefreshFailureKeepsPrevious(t *testing.T) {
	src := &fakeSource{settings: model.Settings{ChurchName: "First"}}
	p := NewProvider(src)
	assert.Equal(t, nil, p.Refresh(context.Background()))

	src.err = errors.New("cms down")
	err := p.Refresh(context.Background())

	assert.NotEqual(t, nil, err)
	assert.Equal(t, "First", p.Current().ChurchName)
	assert.Equal(t, 2, src.calls)
}

func TestCurrentReturnsCopy(t *testing.T) {
	p := NewProvider(&fakeSource{})
	s := p.Current()
	s.ChurchName = "mutated"
	assert.Equal(t, DefaultSettings().ChurchName, p.Current().ChurchName)
}
