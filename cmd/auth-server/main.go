package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"authgate/internal/auth"
	"authgate/internal/config"
	"authgate/internal/domain"
	"authgate/internal/handler"
	"authgate/internal/middleware"
	"authgate/internal/observability"
	"authgate/internal/repository/postgres"
	redisrepo "authgate/internal/repository/redis"
	"authgate/internal/security"
	"authgate/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting auth server", slog.String("auth_type", cfg.AuthType))

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	var rdb *redis.Client
	if cfg.AuthType == config.AuthTypeSessionDB && cfg.SessionStore == config.SessionStoreRedis {
		rdb, err = config.NewRedisConnection(cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
		slog.Info("connected to redis")
	}

	userRepo := postgres.NewUserRepository(db)
	hasher := security.NewBcryptHasher(0)
	authService := service.NewAuthService(userRepo, hasher)

	authenticator, err := buildAuthenticator(cfg, db, rdb, userRepo, hasher)
	if err != nil {
		slog.Error("failed to build authenticator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Session endpoints are only mounted when the strategy manages sessions;
	// basic auth carries credentials on every request instead.
	sessions, _ := authenticator.(auth.SessionManager)

	authHandler := handler.NewAuthHandler(authService, sessions, userRepo, cfg.SessionName, cfg.SessionDuration)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, rdb))
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Not found"}`, http.StatusNotFound)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authenticator, cfg.AuthType))

		r.Get("/status", handler.Health)

		r.Post("/users", authHandler.Register)
		r.Get("/users/me", authHandler.Me)

		r.Post("/reset_password", authHandler.ResetPasswordToken)
		r.Put("/reset_password", authHandler.UpdatePassword)

		if sessions != nil {
			r.Post("/auth_session/login", authHandler.Login)
			r.Delete("/auth_session/logout", authHandler.Logout)
		}
	})

	statsCtx, statsCancel := context.WithCancel(context.Background())
	defer statsCancel()
	go sampleDBStats(statsCtx, db)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("auth server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("server stopped gracefully")
}

// buildAuthenticator assembles the strategy named by AUTH_TYPE.
func buildAuthenticator(cfg *config.Config, db *sql.DB, rdb *redis.Client, users domain.UserRepository, hasher security.Hasher) (auth.Authenticator, error) {
	base := auth.NewBase(cfg.SessionName, parsePaths(cfg.ExcludedPaths))

	switch cfg.AuthType {
	case config.AuthTypeBasic:
		return auth.NewBasicAuth(base, users, hasher), nil

	case config.AuthTypeSession:
		return auth.NewSessionAuth(base, auth.NewSessionTable(), users), nil

	case config.AuthTypeSessionExp:
		sessions := auth.NewSessionAuth(base, auth.NewSessionTable(), users)
		return auth.NewSessionExpAuth(sessions, cfg.SessionDuration), nil

	case config.AuthTypeSessionDB:
		sessions := auth.NewSessionAuth(base, auth.NewSessionTable(), users)
		expiring := auth.NewSessionExpAuth(sessions, cfg.SessionDuration)

		var store domain.SessionRecordStore
		if cfg.SessionStore == config.SessionStoreRedis {
			store = redisrepo.NewSessionStore(rdb, cfg.SessionDuration)
		} else {
			repo, err := postgres.NewSessionRepository(db)
			if err != nil {
				return nil, err
			}
			store = repo
		}
		return auth.NewSessionDBAuth(expiring, store, users), nil
	}

	// Load already validated AUTH_TYPE; this is unreachable.
	return auth.NewSessionAuth(base, auth.NewSessionTable(), users), nil
}

// sampleDBStats feeds the connection pool gauge until ctx is done.
func sampleDBStats(ctx context.Context, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			observability.DBConnectionsOpen.Set(float64(db.Stats().OpenConnections))
		}
	}
}

func parsePaths(pathsStr string) []string {
	paths := strings.Split(pathsStr, ",")
	out := paths[:0]
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
