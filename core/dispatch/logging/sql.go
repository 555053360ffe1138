package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// sqlStore holds the query logic shared by the SQLite and Postgres backends.
// placeholder renders the n-th bind parameter for the driver.
type sqlStore struct {
	db          *sql.DB
	placeholder func(n int) string
}

func (s *sqlStore) ensureSchema(schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		if cerr := s.db.Close(); cerr != nil {
			return fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return err
	}
	return nil
}

func (s *sqlStore) Append(ctx context.Context, rec RunRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO run_logs (run_id, ts, state, record) VALUES (%s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4))
	_, err = s.db.ExecContext(ctx, query, rec.RunID, rec.Timestamp.UnixNano(), rec.State, string(b))
	return err
}

// Query filters time and state in SQL and the roster filters after decoding.
func (s *sqlStore) Query(ctx context.Context, q RunQuery) ([]RunRecord, error) {
	var (
		where []string
		args  []any
	)
	if !q.Start.IsZero() {
		args = append(args, q.Start.UnixNano())
		where = append(where, "ts >= "+s.placeholder(len(args)))
	}
	if !q.End.IsZero() {
		args = append(args, q.End.UnixNano())
		where = append(where, "ts <= "+s.placeholder(len(args)))
	}
	if q.State != "" {
		args = append(args, q.State)
		where = append(where, "state = "+s.placeholder(len(args)))
	}
	query := `SELECT record FROM run_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ts, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r RunRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return q.limit(res), nil
}

// Close closes the underlying database.
func (s *sqlStore) Close() error { return s.db.Close() }
