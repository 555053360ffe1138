package logging

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps run records in a single-file SQLite database.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens the database at path, creating it and the run_logs
// table when missing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY under
	// concurrent Append calls.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{sqlStore{db: db, placeholder: func(int) string { return "?" }}}
	if err := s.ensureSchema(`CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		state TEXT NOT NULL,
		record TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS run_logs_ts ON run_logs (ts);`); err != nil {
		return nil, err
	}
	return s, nil
}
