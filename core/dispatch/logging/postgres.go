package logging

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists run records to PostgreSQL through the pgx driver.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore connects to dsn and ensures schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	s := &PostgresStore{sqlStore{db: db, placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}}
	schema := `CREATE TABLE IF NOT EXISTS run_logs (
        id BIGSERIAL PRIMARY KEY,
        run_id TEXT NOT NULL,
        ts BIGINT NOT NULL,
        state TEXT NOT NULL,
        record JSONB NOT NULL
    );`
	if err := s.ensureSchema(schema); err != nil {
		return nil, err
	}
	return s, nil
}
