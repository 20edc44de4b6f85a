package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"arbor/internal/auth"
	"arbor/internal/config"
	"arbor/internal/handler"
	"arbor/internal/middleware"
	"arbor/internal/repository/postgres"
	postgresVFS "arbor/internal/repository/postgres/vfs"
	serviceVFS "arbor/internal/service/vfs"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.Debug {
		logFile, err := config.SetupLogFile("logs", 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	nodeRepo := postgresVFS.NewNodeRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	namespaceService := serviceVFS.NewNamespaceService(nodeRepo, txManager, logger)

	nsHandler := handler.NewNamespaceHandler(namespaceService, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", nsHandler.HealthCheck)

	// Namespace mutations
	mux.HandleFunc("POST /api/fs/save", nsHandler.Save)
	mux.HandleFunc("POST /api/fs/mkdir", nsHandler.Mkdir)
	mux.HandleFunc("POST /api/fs/rename", nsHandler.Rename)
	mux.HandleFunc("POST /api/fs/delete", nsHandler.Delete)
	mux.HandleFunc("POST /api/fs/move", nsHandler.Move)
	mux.HandleFunc("POST /api/fs/visibility", nsHandler.SetVisibility)
	mux.HandleFunc("POST /api/fs/paste", nsHandler.Paste)
	mux.HandleFunc("POST /api/fs/join", nsHandler.Join)
	mux.HandleFunc("POST /api/fs/folder", nsHandler.BuildFolder)

	// Namespace reads
	mux.HandleFunc("GET /api/fs/search", nsHandler.Search)
	mux.HandleFunc("GET /api/fs/tree", nsHandler.GetTree)
	mux.HandleFunc("GET /api/fs/list", nsHandler.List)
	mux.HandleFunc("GET /api/fs/stat", nsHandler.Stat)

	// Middleware chain, applied in reverse order.
	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS must sit before auth to answer OPTIONS pre-flight requests.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Namespace"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
