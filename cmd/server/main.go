package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"soundsteps/internal/catalog"
	"soundsteps/internal/config"
	"soundsteps/internal/database"
	"soundsteps/internal/handlers"
	"soundsteps/internal/repository"
	"soundsteps/internal/security"
	"soundsteps/internal/service"
	"soundsteps/migrations"
)

// Requests per minute per client IP on the credential endpoints
const authRateLimit = 10

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

	// Run migrations, from disk when a path is configured
	var migrationsFS fs.FS = migrations.FS
	if cfg.MigrationsPath != "" {
		migrationsFS = os.DirFS(cfg.MigrationsPath)
	}
	if err := db.RunMigrations(context.Background(), migrationsFS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	// Initialize email service (disabled without a sender address)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
	}
	if emailService == nil || !emailService.IsEnabled() {
		log.Println("Email service disabled; password reset links will not be sent")
	}

	curriculum := catalog.Default()
	if emailService != nil {
		emailService.SetCurriculum(curriculum)
	}

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, tokens, emailService, cfg.SessionDuration)
	catalogService := service.NewCatalogService(curriculum, progressRepo, service.NewVideoChecker(cfg.VideoCheckTimeout, cfg.Debug))
	playbackService := service.NewPlaybackService(catalogService, progressRepo, statsRepo, cfg.Timezone, cfg.TrackerIdleTimeout, cfg.Debug)
	progressService := service.NewProgressService(progressRepo, statsRepo)
	assessmentService := service.NewAssessmentService(assessmentRepo)

	// Initialize handlers
	limiter := security.NewRateLimiter(authRateLimit, time.Minute)
	router := &handlers.Router{
		Middleware: handlers.NewMiddleware(authService, limiter),
		Auth:       handlers.NewAuthHandler(authService),
		Catalog:    handlers.NewCatalogHandler(catalogService),
		Playback:   handlers.NewPlaybackHandler(playbackService),
		Progress:   handlers.NewProgressHandler(progressService, assessmentService),
		Health:     handlers.NewHealthHandler(db, playbackService.ActiveCount),
	}

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background jobs
	scheduler := startScheduler(cfg.Timezone, authService, playbackService, limiter)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	<-scheduler.Stop().Done()

	// Trackers flush their last position and watch time before the database closes
	if err := playbackService.Shutdown(ctx); err != nil {
		log.Printf("Error flushing playback trackers: %v", err)
	}

	log.Println("Server stopped")
}

// startScheduler registers the periodic maintenance jobs
func startScheduler(loc *time.Location, authService *service.AuthService, playbackService *service.PlaybackService, limiter *security.RateLimiter) *cron.Cron {
	c := cron.New(cron.WithLocation(loc))

	// Remove expired sessions and reset tokens
	if _, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		removed, err := authService.CleanupExpiredSessions(ctx)
		if err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
			return
		}
		log.Printf("Cleaned up %d expired sessions", removed)
	}); err != nil {
		log.Fatalf("Failed to schedule session cleanup: %v", err)
	}

	// Tear down trackers whose client went away without stopping playback
	if _, err := c.AddFunc("@every 1m", func() {
		playbackService.TeardownIdle()
	}); err != nil {
		log.Fatalf("Failed to schedule tracker cleanup: %v", err)
	}

	// Forget rate limit buckets of clients that went quiet
	if _, err := c.AddFunc("@every 10m", func() {
		if removed := limiter.Cleanup(); removed > 0 {
			log.Printf("Removed %d idle rate limit entries", removed)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule rate limiter cleanup: %v", err)
	}

	c.Start()
	log.Println("Background jobs scheduled")
	return c
}
