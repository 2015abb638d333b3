package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/email"
	"github.com/medibook/booking-api/internal/handler"
	bookinghandler "github.com/medibook/booking-api/internal/handler/booking"
	doctorhandler "github.com/medibook/booking-api/internal/handler/doctor"
	notificationhandler "github.com/medibook/booking-api/internal/handler/notification"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/repository/postgres"
	"github.com/medibook/booking-api/internal/router"
	availabilityservice "github.com/medibook/booking-api/internal/service/availability"
	bookingservice "github.com/medibook/booking-api/internal/service/booking"
	notificationservice "github.com/medibook/booking-api/internal/service/notification"
	"github.com/medibook/booking-api/internal/session"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/messaging"
	redisbroker "github.com/medibook/booking-api/pkg/messaging/redis"
	"github.com/medibook/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	bookingRepo := postgres.NewBookingRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)

	m := metrics.NewMetrics("medibook", "booking")

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		zl := zerolog.New(os.Stdout).With().Timestamp().Str("component", "broker").Logger()
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, &zl)
		if err != nil {
			log.Fatal(err, "failed to connect to redis")
		}
		defer broker.Close()
	}

	var emailSvc email.Service
	if cfg.Email.Enabled {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
	}

	notificationSvc := notificationservice.NewService(notificationRepo, patientRepo, broker, emailSvc, log, m)
	availabilitySvc := availabilityservice.NewService(bookingRepo, doctorRepo, cfg.Availability.DoctorCacheTTL, m)
	seen := session.NewSeenTracker()
	bookingSvc := bookingservice.NewService(bookingRepo, patientRepo, doctorRepo, notificationSvc, availabilitySvc, seen, log, m)

	h := handler.NewHandler()
	bookingH := bookinghandler.NewHandler(bookingSvc)
	doctorH := doctorhandler.NewHandler(availabilitySvc)
	notificationH := notificationhandler.NewHandler(notificationSvc)

	r := router.NewRouter(h, bookingH, doctorH, notificationH, router.Config{
		RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "medibook_booking_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}

	log.Info("server stopped")
}
