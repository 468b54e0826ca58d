package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/punchclock/server/internal/config"
	"github.com/BrandonDHaskell/punchclock/server/internal/db"
	"github.com/BrandonDHaskell/punchclock/server/internal/grpcapi"
	"github.com/BrandonDHaskell/punchclock/server/internal/httpapi"
	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/service"
	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/store/sqlstore"
	"github.com/BrandonDHaskell/punchclock/server/internal/logging"
)

// setup loads configuration, builds the logger and opens the database.
func setup(ctx context.Context) (config.Config, *logrus.Logger, *sql.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, errors.Wrap(err, "load config failed")
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, nil, errors.Wrap(err, "validate config failed")
	}

	log := logging.New(cfg.LogLevel)
	logger = log

	conn, err := db.Open(ctx, db.Config{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DBDSN,
	})
	if err != nil {
		return config.Config{}, nil, nil, errors.Wrap(err, "open db failed")
	}
	log.WithFields(logrus.Fields{"driver": cfg.DBDriver, "env": cfg.Env}).Info("database ready")
	return cfg, log, conn, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, log, conn, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	log.Info("migrations applied")
	return conn.Close()
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, conn, err := setup(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	responder, err := service.NewSessionResponder(
		sqlstore.NewAttendanceStore(conn, writer),
		log,
		service.WithHeartbeatLogInterval(time.Duration(cfg.HeartbeatLogIntervalSeconds)*time.Second),
	)
	if err != nil {
		return errors.Wrap(err, "new session responder failed")
	}

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:       log,
		Addr:         cfg.HTTPAddr,
		Responder:    responder,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server error")
			stop()
		}
	}()

	if cfg.HealthAddr != "" {
		health := grpcapi.NewHealthServer(cfg.HealthAddr, log)
		monitor := service.NewHealthMonitor(conn, health,
			time.Duration(cfg.HealthCheckIntervalSeconds)*time.Second, log)
		monitor.Start(ctx)
		defer monitor.Stop()

		go func() {
			if err := health.Start(); err != nil {
				log.WithError(err).Error("grpc health server error")
				stop()
			}
		}()
		defer health.Stop()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "http shutdown failed")
}
