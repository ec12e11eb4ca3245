package main

import (
	"context"
	"errors"
	"fmt"
	"ixadmin/internal/config"
	"ixadmin/internal/database"
	"ixadmin/internal/grafana"
	"ixadmin/internal/logging"
	"ixadmin/internal/routes"
	"ixadmin/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("[SERVER] Startup failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stdout,
	})
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database.URL, cfg.Database.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logging.Warn().Err(err).Msg("[DB] Close failed")
		}
	}()

	if cfg.Database.Seed {
		if err := database.Seed(db, database.AdminSeed{Email: cfg.Admin.Email, Password: cfg.Admin.Password}); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	services.InitAuthService(cfg.Auth.JWTSecret, cfg.TokenExpiry())

	grafanaClient := grafana.NewClient(cfg.Grafana)
	zabbixClient := grafana.NewZabbixClient(cfg.Zabbix, cfg.Grafana.Timeout)
	if !grafanaClient.Configured() {
		logging.Warn().Msg("[GRAFANA] ⚠️  GRAFANA_URL or GRAFANA_API_KEY not set; traffic endpoints serve synthetic data")
	}

	traffic := services.NewTrafficService(grafanaClient, cfg.Grafana.TrafficQueries)
	upstream := services.NewUpstreamService(cfg.Grafana, grafanaClient, zabbixClient, cfg.Zabbix.HostGroup)
	hub := services.InitLiveHub(cfg.Live.Interval, traffic.Realtime)

	probe, err := services.NewProbeScheduler(cfg.Live.ProbeSchedule, upstream, cfg.Grafana.Timeout)
	if err != nil {
		hub.Stop()
		return err
	}
	probe.Start()

	router := routes.NewRouter(cfg, routes.Services{
		Users:      services.NewUserService(db),
		Locations:  services.NewLocationService(db),
		Catalog:    services.NewCatalogService(db),
		Continents: services.NewContinentService(db),
		Contacts:   services.NewContactService(db),
		Stats:      services.NewStatsService(db),
		Traffic:    traffic,
		Upstream:   upstream,
		Health:     services.NewHealthService(db),
		Hub:        hub,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Msg("[SERVER] ✓ MX-IX Admin API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("[SERVER] Shutting down")
	case err := <-serveErr:
		probe.Stop()
		hub.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	probe.Stop()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logging.Info().Msg("[SERVER] ✓ Stopped")
	return nil
}
