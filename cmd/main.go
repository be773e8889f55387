package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/handler"
	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/pkg/broker"
	"github.com/xsidious/constructionmanagment-sub000/pkg/config"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
	"github.com/xsidious/constructionmanagment-sub000/pkg/jwtutil"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/pkg/validate"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting contractor service...", cfg.LogConfig()...)

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	broker.Init(cfg, log)
	defer broker.Get().Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()

	// Global middleware, order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	handler.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
