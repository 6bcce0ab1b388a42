package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/portfolio-backend/internal/config"
	"github.com/AnshRaj112/portfolio-backend/internal/database"
	"github.com/AnshRaj112/portfolio-backend/internal/handlers"
	"github.com/AnshRaj112/portfolio-backend/internal/middleware"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/routes"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
	"github.com/AnshRaj112/portfolio-backend/internal/store"
	"github.com/AnshRaj112/portfolio-backend/pkg/clientip"
	"github.com/AnshRaj112/portfolio-backend/pkg/utils"
)

func main() {
	// Load env
	envErr := godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Field cipher for visitor metadata
	var cipher *utils.FieldCipher
	if cfg.EncryptionKey == "" {
		logger.Warn("ENCRYPTION_KEY not set; contact metadata is stored in plaintext (generate one with: openssl rand -base64 32)")
	} else {
		c, err := utils.NewFieldCipher(cfg.EncryptionKey)
		if err != nil {
			return err
		}
		cipher = c
		logger.Info("encryption key configured")
	}

	// MongoDB is required
	if err := database.Connect(cfg.MongoURI, cfg.MongoDatabase); err != nil {
		return err
	}
	defer database.Disconnect()

	// Redis is optional
	if cfg.RedisURI != "" {
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			logger.Warn("redis unavailable; cache, sessions and cross-instance inbox events disabled", zap.Error(err))
		} else {
			defer database.DisconnectRedis()
		}
	}
	rdb := database.RedisClient
	if cfg.RequireAdminSession && rdb == nil {
		return errors.New("REQUIRE_ADMIN_SESSION needs a reachable Redis (REDIS_URI)")
	}

	// Stores
	portfolioStore := store.NewPortfolio(database.DB)
	if err := portfolioStore.EnsureIndexes(ctx); err != nil {
		return err
	}
	users := store.NewUsers(database.DB)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	var contactStore services.ContactStore
	switch strings.ToLower(cfg.ContactStore) {
	case "postgres":
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			return err
		}
		defer database.DisconnectPostgres()
		contactStore = store.NewContactPostgres(database.PostgresDB)
	default:
		mongoContacts := store.NewContactMongo(database.DB)
		if err := mongoContacts.EnsureIndexes(ctx); err != nil {
			return err
		}
		contactStore = mongoContacts
	}

	// Services
	stores := portfolioStore.Stores()
	portfolio := services.NewPortfolioService(stores, services.NewCacheService(rdb), cfg.PortfolioCacheTTL, logger)

	stats := services.NewSocialStatsService(stores.SocialStats, services.NewSocialClient(cfg.SocialFetchTimeout, cfg.GitHubToken), portfolio, logger)
	sessions := services.NewAdminSessions(rdb)
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailDisplayName)
	if !cfg.SMTPConfigured() {
		logger.Warn("SMTP not configured; password reset codes are returned in the response when RESET_TOKEN_FALLBACK is on")
	}
	auth := services.NewAuthService(users, mailer, sessions, cfg.ResetTokenFallback, logger)

	hub := services.NewInboxHub(rdb, logger)
	hub.Start(ctx)
	contacts := services.NewContactService(contactStore, cipher, hub, logger)

	var uploader services.Uploader
	if cfg.CloudinaryConfigured() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("cloudinary init failed; uploads disabled", zap.Error(err))
		} else {
			uploader = cld
			logger.Info("cloudinary service initialized")
		}
	} else {
		logger.Warn("cloudinary credentials not found; uploads disabled")
	}

	// Handlers
	ips := clientip.Resolver{TrustProxy: cfg.TrustProxy}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	checks := map[string]handlers.Pinger{
		"mongo": func(ctx context.Context) error { return database.Client.Ping(ctx, nil) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if database.PostgresDB != nil {
		checks["postgres"] = database.PostgresDB.PingContext
	}

	h := routes.Handlers{
		Portfolio:   handlers.NewPortfolioHandler(portfolio, logger),
		Sections:    newSectionHandlers(stores, portfolio, logger),
		SocialStats: handlers.NewSocialStatsHandler(stats, logger),
		Auth:        handlers.NewAuthHandler(auth, logger),
		Contact:     handlers.NewContactHandler(contacts, hub, ips, cfg.AllowedOrigins, logger),
		Upload:      handlers.NewUploadHandler(uploader, logger),
		Health:      handlers.NewHealthHandler(checks),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RequestLogger(logger, ips))
	r.Use(metrics.Handler)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, ips) {
			r.Use(mw)
		}
		logger.Info("production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	}

	routes.SetupRoutes(r, h, routes.Guards{
		Admin:         middleware.RequireAdmin(sessions, cfg.RequireAdminSession, logger),
		ContactSubmit: middleware.ContactSubmitLimit(rdb, ips, logger),
	})
	if !cfg.RequireAdminSession {
		logger.Warn("admin routes are not protected; set REQUIRE_ADMIN_SESSION=true in production")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("portfolio backend running", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newSectionHandlers(s services.PortfolioStores, changes services.Invalidator, logger *zap.Logger) handlers.Sections {
	return handlers.Sections{
		Headers:      handlers.NewSectionHandler(services.NewSectionService[models.Header]("Header", s.Headers, true, changes), logger),
		Introduction: handlers.NewSectionHandler(services.NewSectionService[models.Introduction]("Introduction", s.Introductions, true, changes), logger),
		About:        handlers.NewSectionHandler(services.NewSectionService[models.About]("About", s.Abouts, true, changes), logger),
		Contacts:     handlers.NewSectionHandler(services.NewSectionService[models.Contact]("Contact", s.Contacts, true, changes), logger),
		LeftSides:    handlers.NewSectionHandler(services.NewSectionService[models.LeftSider]("LeftSider", s.LeftSiders, true, changes), logger),
		Footer:       handlers.NewSectionHandler(services.NewSectionService[models.Footer]("Footer", s.Footers, true, changes), logger),
		Skills:       handlers.NewSectionHandler(services.NewSectionService[models.Skill]("Skill category", s.Skills, false, changes), logger),
		Experiences:  handlers.NewSectionHandler(services.NewSectionService[models.Experience]("Experience", s.Experiences, false, changes), logger),
		Projects:     handlers.NewSectionHandler(services.NewSectionService[models.Project]("Project", s.Projects, false, changes), logger),
		Educations:   handlers.NewSectionHandler(services.NewSectionService[models.Education]("Education", s.Educations, false, changes), logger),
		Certificates: handlers.NewSectionHandler(services.NewSectionService[models.Certificate]("Certificate", s.Certificates, false, changes), logger),
	}
}
