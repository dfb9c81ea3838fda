package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"sbccweb/internal/api"
	"sbccweb/internal/cache"
	"sbccweb/internal/config"
	appLog "sbccweb/internal/log"
	"sbccweb/internal/schedule"
	"sbccweb/internal/settings"
	"sbccweb/internal/timefmt"
	"sbccweb/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	// .env is optional; real environment variables take precedence.
	godotenv.Load()

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		if conf == nil {
			os.Exit(1)
		}
	}
	conf.ApplyEnv(os.Getenv)
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	conf.Normalize()
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Normalize has already replaced an unknown zone with the default.
	formatter := timefmt.NewInLocation(conf.Location())

	var clientOpts []api.Option
	if d := conf.RequestTimeout(); d > 0 {
		clientOpts = append(clientOpts, api.WithTimeout(d))
	}
	client := api.NewClient(conf.APIURL, clientOpts...)

	appLog.Info("sbccweb starting",
		"listen", conf.Listen,
		"api_url", client.BaseURL(),
		"timezone", formatter.Location().String(),
		"refresh", conf.RefreshCron,
		"cache_ttl_seconds", conf.CacheTTLSeconds,
		"redis", conf.RedisURL != "",
		"services", len(conf.Services),
		"once", flags.once,
	)

	provider := settings.NewProvider(client)
	// A failed first refresh is logged by the provider; defaults are served.
	_ = provider.Refresh(ctx)

	if flags.once {
		dumpEffective(conf, provider)
		return
	}

	sched, err := schedule.New(conf.Services, formatter.Location())
	if err != nil {
		appLog.Error("invalid service schedule", err)
		os.Exit(1)
	}

	respCache, closeCache := newCache(ctx, conf)
	defer closeCache()

	server := web.NewServer(web.Deps{
		Content:        client,
		Formatter:      formatter,
		Settings:       provider,
		Schedule:       sched,
		Cache:          respCache,
		AllowedOrigins: conf.AllowedOrigins,
		CalendarName:   conf.CalendarName,
	})

	c := cron.New(cron.WithLocation(formatter.Location()))
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		rctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_ = provider.Refresh(rctx)
		server.PurgeCache(rctx)
	}); err != nil {
		appLog.Error("invalid refresh schedule; periodic refresh disabled", err, "refresh", conf.RefreshCron)
	}
	c.Start()
	defer c.Stop()

	if err := server.Run(ctx, conf.Listen); err != nil {
		appLog.Error("http server failed", err, "listen", conf.Listen)
		os.Exit(1)
	}
	appLog.Info("sbccweb exiting")
}

// newCache picks Redis when configured and reachable, otherwise memory.
func newCache(ctx context.Context, conf *config.Config) (cache.Cache, func()) {
	if conf.RedisURL != "" {
		r, err := cache.NewRedis(ctx, conf.RedisURL, conf.CacheTTL())
		if err == nil {
			appLog.Info("using redis response cache")
			return r, func() { r.Close() }
		}
		appLog.Error("redis unavailable; using in-memory cache", err)
	}
	return cache.NewMemory(conf.CacheTTL()), func() {}
}

// dumpEffective prints the resolved configuration and settings as JSON.
func dumpEffective(conf *config.Config, provider *settings.Provider) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	out := map[string]any{
		"config":          conf,
		"settings":        provider.Current(),
		"settings_loaded": provider.Loaded(),
	}
	if err := enc.Encode(out); err != nil {
		appLog.Error("failed to write config", err)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Refresh settings, print the effective config and exit")

	flag.Parse()

	return cfg
}
