package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-port/internal/application"
	appchecks "github.com/bryanwahyu/automaton-port/internal/application/checks"
	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
	mysqlp "github.com/bryanwahyu/automaton-port/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/automaton-port/internal/infra/db/postgres"
	dockerrunner "github.com/bryanwahyu/automaton-port/internal/infra/executor/docker"
	"github.com/bryanwahyu/automaton-port/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/automaton-port/internal/infra/storage"
	"github.com/bryanwahyu/automaton-port/internal/middleware"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the check API service",
		Long: `Exposes the sandboxed check over HTTP with an optional run journal
(MySQL or PostgreSQL) and transcript archive (MinIO), both enabled by
config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// connect journal database, driver from config
	var db *sql.DB
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return fmt.Errorf("mysql connect error: %w", err)
		}
		repo = mysqlp.NewRunRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return fmt.Errorf("postgres connect error: %w", err)
		}
		repo = postgresp.NewRunRepository(db)
	case "":
		// journal disabled
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if db != nil {
		defer db.Close()
	}

	// init minio transcript archive
	var store domain.ArtifactStore
	if cfg.Minio.Endpoint != "" {
		s, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		store = s
	}

	// init runner + service
	runner := dockerrunner.NewRunner(cfg.Check.Image, cfg.Check.Mount, cfg.Check.Command)
	svc := &appchecks.Service{
		Runner:    runner,
		Repo:      repo,
		Artifacts: store,
		Clock:     application.SystemClock{},
	}

	checkers := map[string]middleware.HealthChecker{}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.RateLimitMiddleware(30, 10))
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKey))
	mux.Mount("/", httpserver.NewRouter(svc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	return nil
}
