// Package storage provides SQLite-based persistence for match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
// Only finished rounds are stored; board state never is.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-battleship/internal/multiplayer"
)

// Match modes.
const (
	ModeLocal     = "local"
	ModeOnline    = "online"
	ModeSimulated = "simulated"
)

// Store manages the SQLite database connection for the scoreboard.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished (or abandoned) round.
type MatchRecord struct {
	ID        int64
	MatchID   string
	Variant   string
	Mode      string
	Round     int
	Player1   string
	Player2   string
	Winner    string // Empty if abandoned
	EndReason string // "completed", "disconnect", "quit"
	Shots1    int
	Hits1     int
	Shots2    int
	Hits2     int
	Duration  int // Duration in seconds
	CreatedAt time.Time
}

// PlayerRecord aggregates every round a player took part in.
type PlayerRecord struct {
	Name       string
	Games      int
	Wins       int
	Losses     int
	Shots      int
	Hits       int
	LastPlayed time.Time
}

// Accuracy returns hits per shot in [0,1].
func (p PlayerRecord) Accuracy() float64 {
	if p.Shots == 0 {
		return 0
	}
	return float64(p.Hits) / float64(p.Shots)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL,
			variant TEXT NOT NULL,
			mode TEXT NOT NULL,
			round INTEGER NOT NULL DEFAULT 1,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			winner TEXT,
			end_reason TEXT NOT NULL,
			shots1 INTEGER NOT NULL DEFAULT 0,
			hits1 INTEGER NOT NULL DEFAULT 0,
			shots2 INTEGER NOT NULL DEFAULT 0,
			hits2 INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (match_id, round)
		);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a round. Returns the ID of the inserted record.
func (s *Store) SaveMatch(m MatchRecord) (int64, error) {
	if m.Round <= 0 {
		m.Round = 1
	}
	var winner sql.NullString
	if m.Winner != "" {
		winner = sql.NullString{String: m.Winner, Valid: true}
	}

	res, err := s.db.Exec(
		`INSERT INTO matches
		 (match_id, variant, mode, round, player1, player2, winner, end_reason,
		  shots1, hits1, shots2, hits2, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID, m.Variant, m.Mode, m.Round, m.Player1, m.Player2, winner, m.EndReason,
		m.Shots1, m.Hits1, m.Shots2, m.Hits2, m.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const matchColumns = `id, match_id, variant, mode, round, player1, player2, winner, end_reason,
	shots1, hits1, shots2, hits2, duration_secs, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (MatchRecord, error) {
	var m MatchRecord
	var winner sql.NullString
	var createdAt any
	err := row.Scan(
		&m.ID, &m.MatchID, &m.Variant, &m.Mode, &m.Round, &m.Player1, &m.Player2,
		&winner, &m.EndReason, &m.Shots1, &m.Hits1, &m.Shots2, &m.Hits2,
		&m.Duration, &createdAt,
	)
	if err != nil {
		return m, err
	}
	if winner.Valid {
		m.Winner = winner.String
	}
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// MatchRounds retrieves every stored round of a match, in round order.
func (s *Store) MatchRounds(matchID string) ([]MatchRecord, error) {
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches WHERE match_id = ? ORDER BY round`,
		matchID,
	)
}

// MatchByID retrieves the first round of a match, or nil if it is unknown.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	m, err := scanMatch(s.db.QueryRow(
		`SELECT `+matchColumns+` FROM matches WHERE match_id = ? ORDER BY round LIMIT 1`,
		matchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &m, nil
}

// RecentMatches retrieves the most recent rounds, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// PlayerMatches retrieves the most recent rounds a player took part in.
func (s *Store) PlayerMatches(name string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches
		 WHERE player1 = ? OR player2 = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		name, name, limit,
	)
}

// seatsQuery flattens both seats of every round into one row per player.
const seatsQuery = `
	WITH seats AS (
		SELECT player1 AS name, shots1 AS shots, hits1 AS hits, winner, created_at FROM matches
		UNION ALL
		SELECT player2 AS name, shots2 AS shots, hits2 AS hits, winner, created_at FROM matches
	)
	SELECT name,
	       COUNT(*),
	       SUM(CASE WHEN winner = name THEN 1 ELSE 0 END),
	       SUM(CASE WHEN winner IS NOT NULL AND winner <> name THEN 1 ELSE 0 END),
	       SUM(shots),
	       SUM(hits),
	       MAX(created_at)
	FROM seats`

func scanPlayer(row rowScanner) (PlayerRecord, error) {
	var p PlayerRecord
	var last any
	if err := row.Scan(&p.Name, &p.Games, &p.Wins, &p.Losses, &p.Shots, &p.Hits, &last); err != nil {
		return p, err
	}
	p.LastPlayed = parseTime(last)
	return p, nil
}

// PlayerRecord returns a player's totals. A player with no rounds gets a
// zero record carrying the name.
func (s *Store) PlayerRecord(name string) (PlayerRecord, error) {
	p, err := scanPlayer(s.db.QueryRow(seatsQuery+` WHERE name = ? GROUP BY name`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerRecord{Name: name}, nil
	}
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("storage: cannot query player record: %w", err)
	}
	return p, nil
}

// Leaderboard ranks players by wins, then by fewer games played.
func (s *Store) Leaderboard(limit int) ([]PlayerRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(seatsQuery+`
		GROUP BY name
		ORDER BY 3 DESC, 2 ASC, name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan leaderboard row: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// ClearMatches deletes every stored round.
func (s *Store) ClearMatches() error {
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveMatch(MatchRecord{
		MatchID:   data.MatchID,
		Variant:   data.Variant,
		Mode:      ModeOnline,
		Round:     data.Round,
		Player1:   data.Player1,
		Player2:   data.Player2,
		Winner:    data.Winner,
		EndReason: data.EndReason,
		Shots1:    data.Shots1,
		Hits1:     data.Hits1,
		Shots2:    data.Shots2,
		Hits2:     data.Hits2,
		Duration:  data.DurationSecs,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)
