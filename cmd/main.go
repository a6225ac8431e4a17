package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roombridge/internal/awair"
	"roombridge/internal/config"
	"roombridge/internal/daikin"
	"roombridge/internal/handlers"
	"roombridge/internal/logger"
	"roombridge/internal/repository"
	"roombridge/internal/repository/db"
	"roombridge/internal/server"
	"roombridge/internal/service"
	"roombridge/internal/transport"
)

const (
	defaultDBPath  = "bridge.db"
	defaultPort    = "8080"
	startupTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	retry := transport.DefaultPolicy()
	sensor := awair.NewClient(cfg.AwairToken, cfg.AwairDeviceType, cfg.AwairBaseURL, retry, log.Named("awair"))
	thermostat := daikin.NewClient(cfg.Email, cfg.Password, cfg.DaikinBaseURL, retry, log.Named("daikin"))

	// Vendor credentials are verified before the loop starts; a bad config
	// should fail loudly at boot, not on the first tick.
	cfg.ThermostatDeviceID = mustConnectVendors(cfg, thermostat, log)

	repos := repository.NewRepository(conn)
	services := service.NewService(cfg, repos, sensor, thermostat, log)
	apiHandler := handlers.NewHandler(services, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := services.Run(ctx, cfg.PollInterval); err != nil {
			log.Fatalw("control loop terminated", "err", err)
		}
	}()

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite journal using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.DBPath
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", defaultDBPath)
		path = defaultDBPath
	}
	return db.InitDB(path)
}

// mustConnectVendors logs in to the thermostat vendor and resolves the
// device to control. Returns the resolved device id.
func mustConnectVendors(cfg config.Config, thermostat *daikin.Client, log *logger.Logger) string {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := thermostat.Authenticate(ctx); err != nil {
		log.Fatalw("thermostat login failed", "err", err)
	}
	deviceID, err := thermostat.ResolveDevice(ctx, cfg.ThermostatDeviceID)
	if err != nil {
		log.Fatalw("thermostat device lookup failed", "err", err)
	}
	log.Infow("thermostat connected", "device_id", deviceID)
	return deviceID
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = defaultPort
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful
// shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// stop the control loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
