package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/tempest-display/internal/api/http"
	"github.com/i474232898/tempest-display/internal/config"
	"github.com/i474232898/tempest-display/internal/dashboard"
	"github.com/i474232898/tempest-display/internal/feed"
	"github.com/i474232898/tempest-display/internal/logging"
	"github.com/i474232898/tempest-display/internal/mqtt"
	"github.com/i474232898/tempest-display/internal/prefs"
	"github.com/i474232898/tempest-display/internal/radar"
	"github.com/i474232898/tempest-display/internal/scheduler"
	"github.com/i474232898/tempest-display/internal/store"
	"github.com/i474232898/tempest-display/internal/tempest"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound radar calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory observation history with configured retention.
	memStore := store.NewMemoryStore(cfg.Store.MaxHistory, cfg.Store.MaxAge)

	db, err := prefs.OpenSQLite(cfg.Store.SQLitePath)
	if err != nil {
		log.WithError(err).Fatal("failed to open preferences database")
	}
	defer db.Close()

	repo, err := prefs.NewSQLiteRepository(ctx, db)
	if err != nil {
		log.WithError(err).Fatal("failed to prepare preferences database")
	}
	prefService := prefs.NewService(repo, cfg.Preferences, log.WithField("component", "prefs"))

	client := tempest.NewStubClient(tempest.StubStation,
		tempest.WithStubLogger(log.WithField("component", "tempest")),
		tempest.WithFeedOptions(feed.WithInterval(cfg.FeedInterval)),
	)

	var dashOpts []dashboard.Option
	if cfg.MQTT.Broker != "" {
		pub := mqtt.NewPublisher(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			Port:     cfg.MQTT.Port,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
		}, log.WithField("component", "mqtt"))
		defer pub.Disconnect()

		go func() {
			if err := pub.Connect(ctx); err != nil {
				log.WithError(err).Warn("mqtt publisher not connected")
			}
		}()
		dashOpts = append(dashOpts, dashboard.WithPublisher(pub))
	}

	dash := dashboard.NewService(client, memStore, log.WithField("component", "dashboard"), dashOpts...)
	defer dash.Stop()

	radarService := radar.NewService(
		radar.NewNWSClient(httpClient, cfg.Radar.NWSBaseURL),
		radar.NewRainViewerClient(httpClient, cfg.Radar.RainViewerURL),
		cfg.Radar.TileHost,
		log.WithField("component", "radar"),
	)
	locator := &radar.Locator{
		Lat:     cfg.Station.Lat,
		Lon:     cfg.Station.Lon,
		Address: cfg.Station.Address,
	}
	if cfg.Station.GeocoderAPIKey != "" {
		locator.Geocoder = radar.GoogleGeocoder{APIKey: cfg.Station.GeocoderAPIKey}
	}

	// Initial load so the live feed knows the device.
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.HTTPTimeout)
	snap, err := dash.Load(loadCtx, cfg.Station.ID)
	cancelLoad()
	if err != nil {
		log.WithError(err).Fatal("failed to load station")
	}
	if err := dash.StartLive(snap.Station.DeviceID); err != nil {
		log.WithError(err).Fatal("failed to start live feed")
	}

	// Scheduler that periodically refreshes the cached data.
	sched := scheduler.New(cfg.RefreshInterval, log.WithField("component", "scheduler"),
		scheduler.DashboardJob(dash, cfg.Station.ID),
		scheduler.RadarFramesJob(radarService),
	)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := httpapi.NewApp(httpapi.AppConfig{
		Name:        "tempest-display",
		ReadTimeout: 10 * time.Second,
		AccessLog:   true,
	})

	handlers := httpapi.NewHandlers(httpapi.Deps{
		Dashboard: dash,
		Prefs:     prefService,
		Radar:     radarService,
		Locator:   locator,
		StationID: cfg.Station.ID,
		Log:       log.WithField("component", "http"),
	})
	httpapi.RegisterRoutes(app, handlers)
	if cfg.StaticDir != "" {
		httpapi.RegisterStatic(app, cfg.StaticDir)
	}

	go func() {
		log.WithField("port", cfg.Port).Info("tempest-display listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Warn("fiber server stopped")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	handlers.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Warn("error during shutdown")
	}
}
