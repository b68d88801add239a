package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/blogora/blog-api/internal/auth"
	"github.com/blogora/blog-api/internal/blog"
	"github.com/blogora/blog-api/internal/botcheck"
	"github.com/blogora/blog-api/internal/config"
	"github.com/blogora/blog-api/internal/database"
	"github.com/blogora/blog-api/internal/email"
	httpServer "github.com/blogora/blog-api/internal/http"
	"github.com/blogora/blog-api/internal/logging"
	"github.com/blogora/blog-api/internal/otp"
	"github.com/blogora/blog-api/internal/storage"
	"github.com/blogora/blog-api/internal/user"
)

// @title           Blog API
// @version         1.0
// @description     REST backend for a blog platform with email verification, session tokens, and image uploads.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Apply pending schema migrations
	if err := database.RunMigrations(context.Background(), db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize object storage for blog images
	imageStore, err := storage.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	// Initialize repositories
	userRepo := user.NewRepository(db)
	otpRepo := otp.NewRepository(db)
	blogRepo := blog.NewRepository(db)
	viewTracker := blog.NewViewTracker(redisClient)

	// Initialize token services
	sessionService, err := auth.NewSessionService(cfg.Auth.SessionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %w", err)
	}
	resetTokenService := auth.NewResetTokenService(
		cfg.Auth.ResetSecretKey,
		cfg.Auth.ResetTokenDuration,
		cfg.Auth.ResetTokenBindPassword,
	)

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.FrontendURL,
	)

	// Initialize bot check
	botCheck := botcheck.NewRecaptchaVerifier(cfg.Recaptcha.SecretKey, cfg.Recaptcha.VerifyURL)

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		otpRepo,
		emailService,
		sessionService,
		resetTokenService,
		botCheck,
		logger,
		cfg.Auth.SessionTokenDuration,
		cfg.Email.FrontendURL,
	)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(authService, logger)
	blogHandler := blog.NewHandler(blogRepo, userRepo, viewTracker, imageStore, logger)
	authMiddleware := auth.NewMiddleware(sessionService, userRepo)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, blogHandler, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
