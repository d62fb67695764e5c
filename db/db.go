package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB holds the database connection; nil when no database is configured
var DB *sql.DB

// Schema creates the tables used by the storefront
const Schema = `
CREATE TABLE IF NOT EXISTS notification_preferences (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	preference_key TEXT NOT NULL,
	email_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	push_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	frequency TEXT NOT NULL DEFAULT 'instant',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, preference_key)
);

ALTER TABLE notification_preferences ALTER COLUMN push_enabled SET DEFAULT FALSE;

CREATE TABLE IF NOT EXISTS user_notifications (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('order', 'promo', 'security', 'wishlist')),
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}',
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS user_notifications_user_created_idx
	ON user_notifications (user_id, created_at DESC);
`

// InitDB opens the database at connStr. An empty connStr leaves DB nil and the
// storefront runs without account storage.
func InitDB(ctx context.Context, connStr string) error {
	if connStr == "" {
		log.Printf("⚠️  No database configured; notification preferences and notifications are unavailable")
		return nil
	}

	conn, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ApplySchema(ctx, conn); err != nil {
		conn.Close()
		return err
	}

	DB = conn
	log.Printf("✓ Database connection established successfully")
	return nil
}

// ApplySchema creates or upgrades the storefront tables on conn
func ApplySchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
