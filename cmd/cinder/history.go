package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// historyRecord is one line of interactive input.
type historyRecord struct {
	Session   string
	Seq       int
	Input     string
	OK        bool
	CreatedAt time.Time
}

// historyStore persists REPL input in a SQL database so sessions can be
// replayed later.
type historyStore struct {
	db     *sql.DB
	driver string
}

var historySchema = map[string]string{
	"sqlite3": `CREATE TABLE IF NOT EXISTS cinder_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	seq INTEGER NOT NULL,
	input TEXT NOT NULL,
	ok BOOLEAN NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
	"mysql": `CREATE TABLE IF NOT EXISTS cinder_history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	session VARCHAR(64) NOT NULL,
	seq INT NOT NULL,
	input TEXT NOT NULL,
	ok BOOLEAN NOT NULL,
	created_at DATETIME(6) NOT NULL
)`,
	"postgres": `CREATE TABLE IF NOT EXISTS cinder_history (
	id BIGSERIAL PRIMARY KEY,
	session TEXT NOT NULL,
	seq INTEGER NOT NULL,
	input TEXT NOT NULL,
	ok BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
}

// parseHistoryDSN picks the driver from the DSN scheme. A DSN without a
// known scheme is a sqlite3 database path.
func parseHistoryDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", errors.New("history: empty DSN")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		source = strings.TrimPrefix(dsn, "mysql://")
		if !strings.Contains(source, "parseTime=") {
			if strings.Contains(source, "?") {
				source += "&parseTime=true"
			} else {
				source += "?parseTime=true"
			}
		}
		return "mysql", source, nil
	case strings.HasPrefix(dsn, "sqlite3://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite3://"), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite://"), nil
	default:
		return "sqlite3", dsn, nil
	}
}

func openHistory(ctx context.Context, dsn string) (*historyStore, error) {
	driver, source, err := parseHistoryDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, historySchema[driver]); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}
	return &historyStore{db: db, driver: driver}, nil
}

// rebind rewrites `?` placeholders for drivers that number them.
func (s *historyStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *historyStore) Record(ctx context.Context, rec historyRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO cinder_history (session, seq, input, ok, created_at) VALUES (?, ?, ?, ?, ?)`),
		rec.Session, rec.Seq, rec.Input, rec.OK, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Records returns the entries of session in input order.
func (s *historyStore) Records(ctx context.Context, session string) ([]historyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT session, seq, input, ok, created_at FROM cinder_history WHERE session = ? ORDER BY seq, id`),
		session)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var records []historyRecord
	for rows.Next() {
		var rec historyRecord
		if err := rows.Scan(&rec.Session, &rec.Seq, &rec.Input, &rec.OK, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Sessions lists the recorded sessions, oldest first.
func (s *historyStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session, MIN(id) AS first_id FROM cinder_history GROUP BY session ORDER BY first_id`)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var (
			session string
			first   int64
		)
		if err := rows.Scan(&session, &first); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *historyStore) LatestSession(ctx context.Context) (string, error) {
	var session string
	err := s.db.QueryRowContext(ctx, `SELECT session FROM cinder_history ORDER BY id DESC LIMIT 1`).Scan(&session)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("history: no sessions recorded")
	}
	if err != nil {
		return "", fmt.Errorf("history: query: %w", err)
	}
	return session, nil
}

func (s *historyStore) Close() error {
	return s.db.Close()
}

// newSessionID names a REPL session after its start time.
func newSessionID(now time.Time) string {
	return now.UTC().Format("20060102T150405.000000")
}
