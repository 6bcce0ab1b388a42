// Command seed creates the first admin account and placeholder portfolio
// content for every empty section.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/config"
	"github.com/AnshRaj112/portfolio-backend/internal/database"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
	"github.com/AnshRaj112/portfolio-backend/internal/store"
)

const defaultAdminPassword = "admin123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDatabase); err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Disconnect()

	// Clear the cached payload too when Redis is around.
	if cfg.RedisURI != "" {
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			logger.Warn("redis unavailable; cached portfolio data may be stale until it expires", zap.Error(err))
		} else {
			defer database.DisconnectRedis()
		}
	}

	portfolioStore := store.NewPortfolio(database.DB)
	if err := portfolioStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to prepare collections", zap.Error(err))
	}
	users := store.NewUsers(database.DB)
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to prepare users collection", zap.Error(err))
	}

	password := cfg.AdminPassword
	if password == "" {
		password = defaultAdminPassword
		logger.Warn("ADMIN_PASSWORD not set; using the default password, change it after first login")
	}
	auth := services.NewAuthService(users, nil, nil, false, logger)
	admin, created, err := auth.EnsureAdmin(ctx, services.RegisterInput{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: password,
	})
	switch {
	case err != nil:
		logger.Fatal("failed to create admin", zap.Error(err))
	case created:
		logger.Info("admin user created", zap.String("username", admin.Username), zap.String("email", admin.Email))
	default:
		logger.Info("admin user already exists; skipping")
	}

	portfolio := services.NewPortfolioService(portfolioStore.Stores(), services.NewCacheService(database.RedisClient), cfg.PortfolioCacheTTL, logger)
	s := &seeder{stores: portfolioStore.Stores(), changes: portfolio, logger: logger}
	if err := s.run(ctx); err != nil {
		logger.Fatal("failed to seed portfolio content", zap.Error(err))
	}
	if len(s.created) == 0 {
		logger.Info("every section already has content; nothing seeded")
		return
	}
	logger.Info("portfolio content seeded", zap.Strings("sections", s.created))
}
