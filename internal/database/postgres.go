package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database. Only used when contact
// messages are configured to live in PostgreSQL.
func ConnectPostgres(postgresURI string) error {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	PostgresDB = db
	zap.L().Info("connected to PostgreSQL")

	return InitPostgresTables(ctx, db)
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id VARCHAR(24) PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			subject VARCHAR(200) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'new',
			ip_address TEXT,
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_messages_status ON contact_messages(status)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_messages_email ON contact_messages(email)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	zap.L().Info("PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
