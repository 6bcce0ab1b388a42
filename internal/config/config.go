package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	MongoDatabase  string
	PostgresURI    string
	RedisURI       string // empty disables cache, sessions and pub/sub
	ContactStore   string // "mongo" or "postgres"
	EncryptionKey  string
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Host           string   // Raw HOST env (e.g. https://api.example.com)
	AllowedHost    string   // Hostname only for strict host check (production only)
	Environment    string   // ENV: production, development, etc.
	TrustProxy     bool     // honour X-Forwarded-For when behind a reverse proxy

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	EmailFrom        string
	EmailDisplayName string

	RequireAdminSession bool
	ResetTokenFallback  bool
	PortfolioCacheTTL   time.Duration
	SocialFetchTimeout  time.Duration
	GitHubToken         string

	// Seed-only settings.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = bareHost(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", ""), getEnv("FRONTEND_URL_3", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	contactStore := strings.ToLower(strings.TrimSpace(getEnv("CONTACT_STORE", "mongo")))
	if contactStore != "postgres" {
		contactStore = "mongo"
	}

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/portfolio")),
		MongoDatabase:       getEnv("MONGODB_DATABASE", ""),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		ContactStore:        contactStore,
		EncryptionKey:       getEnv("ENCRYPTION_KEY", ""),
		Host:                host,
		AllowedHost:         allowedHost,
		Environment:         env,
		TrustProxy:          getEnvBool("TRUST_PROXY", false),
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnv("SMTP_PORT", "465"),
		SMTPUsername:        getEnv("SMTP_USERNAME", getEnv("EMAIL_USER", "")),
		SMTPPassword:        getEnv("SMTP_PASSWORD", getEnv("EMAIL_PASS", "")),
		EmailFrom:           getEnv("EMAIL_FROM", "noreply@portfolio.com"),
		EmailDisplayName:    getEnv("EMAIL_DISPLAY_NAME", "Portfolio Admin System"),
		RequireAdminSession: getEnvBool("REQUIRE_ADMIN_SESSION", false),
		ResetTokenFallback:  getEnvBool("RESET_TOKEN_FALLBACK", true),
		PortfolioCacheTTL:   getEnvDuration("PORTFOLIO_CACHE_TTL", 10*time.Minute),
		SocialFetchTimeout:  getEnvDuration("SOCIAL_FETCH_TIMEOUT", 8*time.Second),
		GitHubToken:         getEnv("GITHUB_TOKEN", ""),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:          getEnv("ADMIN_EMAIL", "admin@portfolio.com"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
	}
}

// bareHost strips scheme, path and port from a HOST value.
func bareHost(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// SMTPConfigured reports whether outgoing email can be attempted.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// CloudinaryConfigured reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
