// Package settings holds the site settings snapshot shown in page chrome.
//
// A Provider is created once at startup, refreshed from the CMS, and passed
// explicitly to whatever needs it. Readers get a copy; there is no package
// level state.
package settings

import (
	"context"
	"sync/atomic"

	appLog "sbccweb/internal/log"
	"sbccweb/internal/model"
)

// Source fetches the current settings from the CMS.
type Source interface {
	GetSettings(ctx context.Context) (model.Settings, error)
}

// DefaultSettings is the built-in copy used until (and whenever) the CMS
// cannot be reached.
func DefaultSettings() model.Settings {
	return model.Settings{
		AppName:    "SBCC",
		ChurchName: "Santa Cruz Bible Christian Church",
		Tagline:    "Growing in Faith, Serving the Community",
		Logo:       "/assets/sbcc-logo.png",
		Mission:    "To know Christ and make Him known through worship, discipleship, and service.",
		Vision:     "To see our city transformed by the love and power of the Gospel, one life at a time.",
		History: "Founded in 1992, Santa Cruz Bible Christian Church has been a beacon of hope in our city for nearly three decades. " +
			"We started as a small bible study group and have grown into a vibrant family of believers dedicated to living out the Gospel.",
		StatementOfFaith: "We believe in the Holy Scriptures as the inspired and authoritative Word of God.\n" +
			"We believe in one God, eternally existing in three persons: Father, Son, and Holy Spirit.\n" +
			"We believe in the deity of our Lord Jesus Christ, His virgin birth, His sinless life, His miracles, His vicarious and atoning death, His bodily resurrection, and His ascension.\n" +
			"We believe in the spiritual unity of believers in our Lord Jesus Christ.",
		ServiceSchedule: "Sunday Worship: 9:00 AM - 11:00 AM",
		Address:         "440 Frederick St, Santa Cruz, CA 95062",
		Phone:           "(+63) 917-222-2222",
		Email:           "1992.sbcc@gmail.com",
	}
}

// Merge overlays fetched onto base. Text fields keep the base value when the
// fetched one is empty; optional fields (banner, favicon, social links)
// always take the fetched value.
func Merge(base, fetched model.Settings) model.Settings {
	out := fetched
	out.AppName = orDefault(fetched.AppName, base.AppName)
	out.Logo = orDefault(fetched.Logo, base.Logo)
	out.ChurchName = orDefault(fetched.ChurchName, base.ChurchName)
	out.Tagline = orDefault(fetched.Tagline, base.Tagline)
	out.Mission = orDefault(fetched.Mission, base.Mission)
	out.Vision = orDefault(fetched.Vision, base.Vision)
	out.History = orDefault(fetched.History, base.History)
	out.StatementOfFaith = orDefault(fetched.StatementOfFaith, base.StatementOfFaith)
	out.ServiceSchedule = orDefault(fetched.ServiceSchedule, base.ServiceSchedule)
	out.Address = orDefault(fetched.Address, base.Address)
	out.Phone = orDefault(fetched.Phone, base.Phone)
	out.Email = orDefault(fetched.Email, base.Email)
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Provider serves the latest merged settings.
type Provider struct {
	source   Source
	defaults model.Settings
	current  atomic.Pointer[model.Settings]
	loaded   atomic.Bool
}

// NewProvider returns a Provider that starts out serving DefaultSettings.
func NewProvider(source Source) *Provider {
	p := &Provider{source: source, defaults: DefaultSettings()}
	d := p.defaults
	p.current.Store(&d)
	return p
}

// Current returns a copy of the latest settings.
func (p *Provider) Current() model.Settings {
	return *p.current.Load()
}

// Loaded reports whether at least one refresh has succeeded.
func (p *Provider) Loaded() bool {
	return p.loaded.Load()
}

// Refresh fetches settings and merges them over the defaults. On failure the
// previous snapshot is kept and the error returned.
func (p *Provider) Refresh(ctx context.Context) error {
	fetched, err := p.source.GetSettings(ctx)
	if err != nil {
		appLog.Error("settings refresh failed; keeping previous", err, "loaded", p.Loaded())
		return err
	}
	merged := Merge(p.defaults, fetched)
	p.current.Store(&merged)
	p.loaded.Store(true)
	appLog.Info("settings refreshed", "church_name", merged.ChurchName)
	return nil
}
