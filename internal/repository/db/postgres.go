package db

import (
	"database/sql"
	"fmt"
	"net/url"

	"procurement/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func NewPostgresDB(cfg *config.PostgresConfig, log *zap.SugaredLogger) (*sql.DB, error) {
	log.Infow("connecting db", "conn", redact(cfg.Conn))
	db, err := sql.Open("postgres", cfg.Conn)
	if err != nil {
		return nil, fmt.Errorf("db.NewPostgresDB: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db.NewPostgresDB: %w", err)
	}

	return db, nil
}

func redact(conn string) string {
	u, err := url.Parse(conn)
	if err != nil || u.User == nil {
		return conn
	}
	return u.Redacted()
}
