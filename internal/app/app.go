// Package app owns the process wide handles of a run (database, http
// clients, telemetry) so nothing in the pipeline reaches for globals.
package app

import (
	"context"
	"ctfrank/internal/apperr"
	"ctfrank/internal/chrono"
	"ctfrank/internal/config"
	"ctfrank/internal/db"
	"ctfrank/internal/history"
	"ctfrank/internal/notify"
	"ctfrank/internal/scrapers/ctftime"
	"ctfrank/internal/telemetry"
	"ctfrank/internal/tracker"
	"database/sql"
	"errors"
)

const ServiceName = "ctfrank"

type App struct {
	Config  config.Config
	DB      *sql.DB
	Store   history.SQLStore
	Tracker tracker.Tracker
	Time    chrono.TimeAPI
	Tel     telemetry.API

	otel telemetry.Telemetry
}

// Open connects to everything cfg points at. Close must be called once the
// run is over.
func Open(ctx context.Context, cfg config.Config, tel telemetry.API) (*App, error) {
	clock, err := chrono.NewStandardTime(cfg.Timezone)
	if err != nil {
		return nil, apperr.Configuration("load timezone "+cfg.Timezone, err)
	}

	otelProviders, err := telemetry.Setup(ctx, ServiceName, cfg.OtlpEndpoint)
	if err != nil {
		return nil, apperr.Configuration("setup telemetry", err)
	}

	database, err := db.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		otelProviders.Shutdown(ctx)
		return nil, apperr.Persistence("open database", err)
	}

	store := history.NewSQLStore(database, tel)
	fetcher := ctftime.NewClient(ctftime.ClientOptions{
		BaseURL:          cfg.BaseURL,
		APIBaseURL:       cfg.APIBaseURL,
		TeamID:           cfg.TeamID,
		Season:           cfg.Season,
		Region:           cfg.Region,
		UserAgent:        cfg.UserAgent,
		Timeout:          cfg.HTTPTimeout.Std(),
		CloudflareBypass: cfg.CloudflareBypass,
	}, tel)
	var notifier tracker.Notifier = notify.Disabled{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL, cfg.HTTPTimeout.Std(), tel)
	}

	return &App{
		Config: cfg,
		DB:     database,
		Store:  store,
		Tracker: tracker.NewTracker(
			store,
			fetcher,
			notifier,
			notify.Identity{Username: cfg.Username, AvatarURL: cfg.AvatarURL},
			clock,
			tel,
		),
		Time: clock,
		Tel:  tel,
		otel: otelProviders,
	}, nil
}

// Close flushes telemetry and closes the database.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(
		a.otel.Shutdown(ctx),
		a.DB.Close(),
	)
}
