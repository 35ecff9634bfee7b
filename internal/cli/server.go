package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/config"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/memory"
	pgstore "github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/postgres"
	redisstore "github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/redis"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/notify"
	transport "github.com/The-Veteran-Culture-Project/site-sub000/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the survey server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	draftTTL := config.TTLDuration(cfg.Draft.TTL, 7*24*time.Hour)
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	var drafts app.DraftRepository
	if redisClient != nil {
		drafts = redisstore.NewDraftStore(redisClient, draftTTL)
	} else {
		drafts = memory.NewDraftStore()
		log.Warn("no redis configured, drafts will not survive a restart")
	}

	var (
		catalogAdmin app.CatalogAdminRepository
		loader       memory.CatalogLoader
	)
	if pool != nil {
		store := pgstore.NewCatalogStore(pool)
		catalogAdmin = store
		loader = store
	} else {
		store := memory.NewCatalogStore(sampleQuestions())
		catalogAdmin = store
		loader = store
		log.Warn("no postgres configured, serving the built-in sample catalog")
	}

	var catalog app.CatalogRepository
	var invalidate func(context.Context)
	if redisClient != nil {
		cache := redisstore.NewCatalogRepository(redisClient, loader, catalogTTL)
		catalog = cache
		invalidate = cache.Invalidate
	} else {
		cache := memory.NewCatalogRepository(loader, catalogTTL)
		catalog = cache
		invalidate = func(context.Context) { cache.Invalidate() }
	}

	var (
		submissions app.SubmissionRepository
		analytics   app.AnalyticsRepository
		accessStore app.AccessRepository
	)
	if pool != nil {
		submissions = pgstore.NewSubmissionRepository(pool)
		analytics = pgstore.NewAnalyticsRepository(pool)
		accessStore = pgstore.NewAccessRepository(pool)
	} else {
		memAnalytics := memory.NewAnalyticsRepository()
		submissions = memory.NewSubmissionRepository(memAnalytics)
		analytics = memAnalytics
		accessStore = memory.NewAccessRepository()
	}

	var sender app.CodeSender
	if cfg.Notify.AccountSID != "" {
		sender, err = notify.NewTwilioSender(notify.Config{
			AccountSID: cfg.Notify.AccountSID,
			AuthToken:  cfg.Notify.AuthToken,
			FromNumber: cfg.Notify.FromNumber,
			BaseURL:    cfg.Notify.BaseURL,
		}, log)
		if err != nil {
			return err
		}
	} else {
		sender = notify.NewNoopSender(log)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Warn("auth.jwt_secret not set, using the development secret")
	}
	gateTTL := config.TTLDuration(cfg.Auth.GateTTL, 24*time.Hour)
	adminTTL := config.TTLDuration(cfg.Auth.AdminTTL, 12*time.Hour)

	tracker := app.NewTrackerService(analytics, log)
	feed := app.NewFeed()
	survey := app.NewSurveyService(drafts, catalog, submissions, tracker, feed, log)
	access := app.NewAccessService(accessStore, sender, cfg.Auth.BetaCode, []byte(secret), gateTTL, adminTTL, log)
	admin := app.NewAdminService(submissions, analytics, catalogAdmin, log)
	admin.SetCatalogInvalidation(invalidate)

	auth := transport.NewAuth(access, log)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewSurveyHandler(survey, tracker, access, auth, log).Register(mux)
	transport.NewAdminHandler(admin, access, auth, log).Register(mux)
	transport.NewWSHandler(feed, auth, log).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting survey service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a small catalog for running without a database.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "sample-1", Text: "I still think of myself as a service member first.", Axis: domain.AxisMilitary, Category: "Identity", Active: true, Position: 1},
		{ID: "sample-2", Text: "Military habits still structure my day.", Axis: domain.AxisMilitary, Category: "Routine", Active: true, Position: 2},
		{ID: "sample-3", Text: "Most of the people I trust served in uniform.", Axis: domain.AxisMilitary, Category: "Community", Active: true, Position: 3},
		{ID: "sample-4", Text: "I feel comfortable in civilian social settings.", Axis: domain.AxisCivilian, Category: "Belonging", Active: true, Position: 4},
		{ID: "sample-5", Text: "My civilian career feels like my own.", Axis: domain.AxisCivilian, Category: "Purpose", Active: true, Position: 5},
		{ID: "sample-6", Text: "I have built close friendships outside the military.", Axis: domain.AxisCivilian, Category: "Community", Active: true, Position: 6},
	}
}
