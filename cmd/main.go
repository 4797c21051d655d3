// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/eventdesk/activity-booking/internal/cache"
	"github.com/eventdesk/activity-booking/internal/config"
	"github.com/eventdesk/activity-booking/internal/database"
	"github.com/eventdesk/activity-booking/internal/handler"
	"github.com/eventdesk/activity-booking/internal/repository"
	"github.com/eventdesk/activity-booking/internal/service"
)

func main() {
	ctx := context.Background()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if cfg.Server.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// ── 1. Connect to PostgreSQL and Redis ───────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Postgres, log)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer pool.Close()
	log.Info("connected to postgres")

	redisClient, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// The listing cache is optional; run without it.
		log.WithError(err).Warn("redis unavailable, listing cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("connected to redis")
	}
	listingCache := cache.New(redisClient, cfg.Cache.ListingTTL)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	activityRepo := repository.NewActivityRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	entitlementSvc := service.NewEntitlementService(enrollmentRepo)
	activitySvc := service.NewActivityService(activityRepo, subscriptionRepo, entitlementSvc, listingCache)
	subscriptionSvc := service.NewSubscriptionService(activityRepo, subscriptionRepo, entitlementSvc, listingCache)
	bookingSvc := service.NewBookingService(bookingRepo, entitlementSvc)

	h := handler.New(activitySvc, subscriptionSvc, bookingSvc, log)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(log))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.ListDates)
		r.Post("/process", h.Subscribe)
		r.Get("/{dateId}", h.ListByDate)
	})
	r.Get("/places", h.ListPlaces)
	r.Route("/booking", func(r chi.Router) {
		r.Get("/", h.GetBooking)
		r.Post("/", h.BookRoom)
		r.Put("/{bookingId}", h.ChangeRoom)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("graceful shutdown failed")
	}
	log.Info("server stopped")
}
