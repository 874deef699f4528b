package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"inspecciones/backend/libs/logging"
	app "inspecciones/backend/services/cuadros-service/internal/app"
	"inspecciones/backend/services/cuadros-service/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewLogger("cuadros-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cuadros-service: build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // best-effort flush

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("configuration loaded",
		zap.String("addr", cfg.HTTPAddress()),
		zap.String("time_zone", cfg.Session.TimeZone),
		zap.Bool("secure_cookies", cfg.Session.Secure),
		zap.Bool("remote_reports", cfg.Reports.ServiceURL != ""),
		zap.Bool("report_archive", cfg.Reports.S3.Bucket != ""),
	)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped with error", zap.Error(err))
		return
	}
	logger.Info("application stopped")
}
