package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/projectdiscovery/edgeping/pkg/report"
	_ "modernc.org/sqlite"
)

// DB persists completed scan sessions and their ranked results.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the results database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// Enable WAL mode for better concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	s := &DB{db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (db *DB) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS scan_sessions (
        id TEXT PRIMARY KEY,
        started_at DATETIME NOT NULL,
        finished_at DATETIME NOT NULL,
        platform TEXT,
        candidates INTEGER,
        probed INTEGER
    );

    CREATE TABLE IF NOT EXISTS scan_results (
        session_id TEXT NOT NULL,
        rank INTEGER NOT NULL,
        address TEXT NOT NULL,
        latency_ms REAL NOT NULL,
        city TEXT,
        country TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (session_id, rank)
    );

    CREATE INDEX IF NOT EXISTS idx_results_address ON scan_results(address);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// SessionInfo describes one completed scan invocation.
type SessionInfo struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Platform   string
	Candidates int
	Probed     int
}

// SaveSession stores the session row together with its ranked entries in one
// transaction.
func (db *DB) SaveSession(info SessionInfo, entries []report.Entry) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        INSERT INTO scan_sessions (id, started_at, finished_at, platform, candidates, probed)
        VALUES (?, ?, ?, ?, ?, ?)
    `, info.ID, info.StartedAt, info.FinishedAt, info.Platform, info.Candidates, info.Probed)
	if err != nil {
		return fmt.Errorf("session insert failed: %w", err)
	}

	for _, entry := range entries {
		_, err = tx.Exec(`
            INSERT INTO scan_results (session_id, rank, address, latency_ms, city, country)
            VALUES (?, ?, ?, ?, ?, ?)
        `, info.ID, entry.Rank, entry.Addr, entry.Milliseconds(), entry.City, entry.Country)
		if err != nil {
			return fmt.Errorf("result insert failed: %w", err)
		}
	}

	return tx.Commit()
}

// SessionResults loads the ranked entries stored for a session, in rank order.
func (db *DB) SessionResults(sessionID string) ([]report.Entry, error) {
	rows, err := db.Query(`
        SELECT rank, address, latency_ms, city, country
        FROM scan_results
        WHERE session_id = ?
        ORDER BY rank
    `, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []report.Entry
	for rows.Next() {
		var entry report.Entry
		var latencyMs float64
		var city, country sql.NullString
		if err := rows.Scan(&entry.Rank, &entry.Addr, &latencyMs, &city, &country); err != nil {
			continue
		}
		entry.RTT = time.Duration(latencyMs * float64(time.Millisecond))
		if city.Valid {
			entry.City = city.String
		}
		if country.Valid {
			entry.Country = country.String
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
