package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailydiet/internal/config"
	"dailydiet/internal/database"
	"dailydiet/internal/handlers"
	"dailydiet/internal/repository"
	"dailydiet/internal/security"
	"dailydiet/internal/service"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	loc := cfg.StreakLocation()
	log.Printf("Diet sequences are counted in %s", loc)

	// Initialize repositories and services
	mealRepo := repository.NewMealRepository(db)
	mealService := service.NewMealService(mealRepo, loc)
	metricsService := service.NewMetricsService(mealRepo, loc)

	// Initialize handlers
	identity := security.NewIdentityManager(cfg.SessionSecret, cfg.SessionDuration)
	limiter := security.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
	middleware := handlers.NewMiddleware(identity, limiter)
	monitor := handlers.NewMonitor(prometheus.DefaultRegisterer)

	mealHandler := handlers.NewMealHandler(mealService, metricsService, identity, monitor)
	healthHandler := handlers.NewHealthHandler(db)
	metricsHandler := handlers.MetricsHandler(prometheus.DefaultGatherer, cfg.MetricsUser, cfg.MetricsPass)

	mux := handlers.NewRouter(middleware, mealHandler, healthHandler, metricsHandler)

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
		gorillahandlers.AllowCredentials(),
	)

	handler := handlers.Logging(monitor.Middleware(middleware.RateLimit(cors(mux))))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go middleware.CleanupVisitors(ctx, time.Minute)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
