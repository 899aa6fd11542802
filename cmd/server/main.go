package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/featureflags"
	"github.com/yourorg/taskmanager/internal/handler"
	"github.com/yourorg/taskmanager/internal/infrastructure/logger"
	"github.com/yourorg/taskmanager/internal/infrastructure/redis"
	"github.com/yourorg/taskmanager/internal/observability/metrics"
	"github.com/yourorg/taskmanager/internal/observability/tracing"
	"github.com/yourorg/taskmanager/internal/repository"
	"github.com/yourorg/taskmanager/internal/security"
	"github.com/yourorg/taskmanager/internal/security/audit"
	"github.com/yourorg/taskmanager/internal/security/auth"
	"github.com/yourorg/taskmanager/internal/security/middleware"
	"github.com/yourorg/taskmanager/internal/security/ratelimit"
	"github.com/yourorg/taskmanager/internal/service"
	"github.com/yourorg/taskmanager/pkg/config"
	"github.com/yourorg/taskmanager/pkg/database"
)

func main() {
	// .env is a development convenience; absence is fine
	_ = godotenv.Load()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting taskmanager server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	if featureflags.EnabledDefault(featureflags.Tracing, true) {
		shutdownTracing, err := tracing.Init(ctx, log, "taskmanager", cfg.Environment, cfg.OTLPEndpoint)
		if err != nil {
			log.Error("failed to initialize tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Error("failed to shut down tracing", slog.String("error", err.Error()))
			}
		}()
	}

	// 4. Initialize the store
	var (
		store  domain.Store
		dbPing handler.Pinger
	)
	switch cfg.DBDriver {
	case "memory":
		log.Warn("using in-memory store, data will not survive restarts")
		store = repository.NewMemoryStore()
	default:
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			Host:            cfg.DBHost,
			Port:            cfg.DBPort,
			User:            cfg.DBUser,
			Password:        cfg.DBPassword,
			Database:        cfg.DBName,
			SSLMode:         cfg.DBSSLMode,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		}, log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		pgStore := repository.NewPostgresStore(pool.GetDB(), log)
		if err := pgStore.RunMigrations(ctx); err != nil {
			log.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = pgStore
		dbPing = pool
	}

	// 5. Initialize Redis (optional, backs the login rate limiter)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, login rate limiting disabled",
				slog.String("error", err.Error()))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 6. Initialize services
	accountService := service.NewAccountService(store, log)
	issueService := service.NewIssueService(store, log)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	authService := service.NewAuthService(accountService, tokenManager, cfg.TokenTTL, log)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := accountService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("failed to bootstrap admin account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 7. Initialize security components
	authorizer := security.NewAuthorizer(issueService, log)
	auditLogger := audit.NewLogger(log)

	var limiter *ratelimit.Limiter
	if redisClient != nil && featureflags.EnabledDefault(featureflags.LoginRateLimit, true) {
		limiter = ratelimit.NewLimiter(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindow, log)
	}

	// 8. Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService, authorizer, log)
	authHandler := handler.NewAuthHandler(authService, limiter, log)
	issueHandler := handler.NewIssueHandler(issueService, authorizer, log)
	commentHandler := handler.NewCommentHandler(issueService, authorizer, log)

	var redisPing handler.Pinger
	if redisClient != nil {
		redisPing = redisClient
	}
	healthHandler := handler.NewHealthHandler(dbPing, redisPing, log)

	// 9. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts", accountHandler.Create)
	mux.HandleFunc("GET /accounts", accountHandler.List)
	mux.HandleFunc("GET /accounts/me", accountHandler.Me)
	mux.HandleFunc("PUT /accounts", accountHandler.Update)
	mux.HandleFunc("DELETE /accounts", accountHandler.DeleteOwn)
	mux.HandleFunc("DELETE /accounts/{id}", accountHandler.DeleteByID)

	mux.HandleFunc("POST /auth/login", authHandler.Login)

	mux.HandleFunc("POST /issues", issueHandler.Create)
	mux.HandleFunc("GET /issues", issueHandler.List)
	mux.HandleFunc("GET /issues/{id}", issueHandler.Get)
	mux.HandleFunc("PUT /issues/{id}", issueHandler.Update)
	mux.HandleFunc("PATCH /issues/{id}", issueHandler.Patch)
	mux.HandleFunc("DELETE /issues/{id}", issueHandler.Delete)

	mux.HandleFunc("POST /issues/{id}/comments", commentHandler.Add)
	mux.HandleFunc("GET /issues/{id}/comments", commentHandler.List)
	mux.HandleFunc("PATCH /issues/{id}/comments/{cid}", commentHandler.Patch)
	mux.HandleFunc("DELETE /issues/{id}/comments/{cid}", commentHandler.Delete)

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Chain middleware: request ID -> metrics -> content type -> JWT -> audit.
	// Audit sits inside JWT so it sees the resolved identity.
	var root http.Handler = mux
	if featureflags.EnabledDefault(featureflags.AuditLog, true) {
		root = middleware.AuditMiddleware(auditLogger)(root)
	}
	root = middleware.JWTMiddleware(tokenManager, log)(root)
	root = middleware.ValidateJSONContentType(log)(root)
	root = metrics.HTTPMetricsMiddleware(root)
	root = withRequestID(root, log)
	root = otelhttp.NewHandler(root, "taskmanager")

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.DBDriver),
		slog.Bool("rate_limiting", limiter != nil),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}
