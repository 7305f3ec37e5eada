// Package storage provides SQLite-based persistence for saved matches,
// character records, session history and high scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/bastion/internal/game"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection. It is safe for concurrent
// use by multiple sessions.
type Store struct {
	db *sql.DB
}

var (
	_ game.SaveStore       = (*Store)(nil)
	_ game.ProgressStore   = (*Store)(nil)
	_ game.SessionRecorder = (*Store)(nil)
)

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	ID        int64
	Profile   string
	MatchID   string
	Score     int
	Wave      int
	CreatedAt time.Time
}

// SaveInfo describes the match in a profile's save slot without decoding it.
type SaveInfo struct {
	Profile      string
	MatchID      string
	Level        int
	Wave         int
	Score        int
	Essence      int
	CastleHealth int
	Elapsed      float64
	SavedAt      time.Time
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

	// SSH sessions write concurrently; wait on locks instead of failing.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS character_progression (
			name TEXT PRIMARY KEY,
			level INTEGER NOT NULL DEFAULT 1,
			current_exp INTEGER NOT NULL DEFAULT 0,
			total_exp INTEGER NOT NULL DEFAULT 0,
			games_played INTEGER NOT NULL DEFAULT 0,
			total_enemies_killed INTEGER NOT NULL DEFAULT 0,
			total_waves_completed INTEGER NOT NULL DEFAULT 0,
			total_towers_built INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS saved_games (
			profile TEXT PRIMARY KEY,
			match_id TEXT NOT NULL,
			character_level INTEGER NOT NULL,
			wave_number INTEGER NOT NULL,
			score INTEGER NOT NULL,
			essence INTEGER NOT NULL,
			castle_health INTEGER NOT NULL,
			time_elapsed REAL NOT NULL,
			snapshot BLOB NOT NULL,
			saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS game_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			profile TEXT NOT NULL,
			character_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			wave_reached INTEGER NOT NULL,
			enemies_killed INTEGER NOT NULL,
			towers_built INTEGER NOT NULL,
			allies_summoned INTEGER NOT NULL,
			time_elapsed REAL NOT NULL,
			exp_gained INTEGER NOT NULL DEFAULT 0,
			start_level INTEGER NOT NULL DEFAULT 1,
			end_level INTEGER NOT NULL DEFAULT 1,
			outcome TEXT NOT NULL,
			ended_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_profile ON game_sessions(profile);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			profile TEXT NOT NULL,
			score INTEGER NOT NULL,
			wave_reached INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
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

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// SaveSnapshot writes the profile's single save slot, replacing any previous save.
func (s *Store) SaveSnapshot(profile string, snap game.SaveSnapshot) error {
	body, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("storage: cannot encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO saved_games
		 (profile, match_id, character_level, wave_number, score, essence, castle_health, time_elapsed, snapshot, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET
			match_id = excluded.match_id,
			character_level = excluded.character_level,
			wave_number = excluded.wave_number,
			score = excluded.score,
			essence = excluded.essence,
			castle_health = excluded.castle_health,
			time_elapsed = excluded.time_elapsed,
			snapshot = excluded.snapshot,
			saved_at = excluded.saved_at`,
		profile,
		snap.MatchID,
		snap.Player.Level,
		snap.Wave.Number,
		snap.Score,
		snap.Essence,
		snap.Castle.Health,
		snap.Elapsed,
		body,
		formatTime(snap.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the profile's save slot. It returns game.ErrNoSnapshot
// when the slot is empty and a *game.CorruptSnapshotError when it cannot be
// decoded.
func (s *Store) LoadSnapshot(profile string) (game.SaveSnapshot, error) {
	var body []byte
	err := s.db.QueryRow(
		"SELECT snapshot FROM saved_games WHERE profile = ?",
		profile,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return game.SaveSnapshot{}, game.ErrNoSnapshot
	}
	if err != nil {
		return game.SaveSnapshot{}, fmt.Errorf("storage: cannot load snapshot: %w", err)
	}

	var snap game.SaveSnapshot
	if err := msgpack.Unmarshal(body, &snap); err != nil {
		return game.SaveSnapshot{}, &game.CorruptSnapshotError{Field: "body", Reason: err.Error()}
	}
	return snap, nil
}

// DeleteSnapshot empties the profile's save slot. Deleting an empty slot is not an error.
func (s *Store) DeleteSnapshot(profile string) error {
	if _, err := s.db.Exec("DELETE FROM saved_games WHERE profile = ?", profile); err != nil {
		return fmt.Errorf("storage: cannot delete snapshot: %w", err)
	}
	return nil
}

// SaveInfo returns the summary columns of the profile's save slot, or
// game.ErrNoSnapshot.
func (s *Store) SaveInfo(profile string) (SaveInfo, error) {
	info := SaveInfo{Profile: profile}
	var savedAt any
	err := s.db.QueryRow(
		`SELECT match_id, character_level, wave_number, score, essence, castle_health, time_elapsed, saved_at
		 FROM saved_games WHERE profile = ?`,
		profile,
	).Scan(&info.MatchID, &info.Level, &info.Wave, &info.Score, &info.Essence, &info.CastleHealth, &info.Elapsed, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveInfo{}, game.ErrNoSnapshot
	}
	if err != nil {
		return SaveInfo{}, fmt.Errorf("storage: cannot query save: %w", err)
	}
	info.SavedAt = parseTime(savedAt)
	return info, nil
}

// LoadProgression returns the character record for name, or a fresh
// level 1 record if none is stored.
func (s *Store) LoadProgression(name string) (game.Progression, error) {
	p := game.Progression{Name: name}
	var createdAt, updatedAt any
	err := s.db.QueryRow(
		`SELECT level, current_exp, total_exp, games_played, total_enemies_killed,
		        total_waves_completed, total_towers_built, created_at, updated_at
		 FROM character_progression WHERE name = ?`,
		name,
	).Scan(&p.Level, &p.Exp, &p.TotalExp, &p.GamesPlayed, &p.EnemiesKilled,
		&p.WavesCompleted, &p.TowersBuilt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return game.NewProgression(name), nil
	}
	if err != nil {
		return game.Progression{}, fmt.Errorf("storage: cannot load progression: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// SaveProgression inserts or updates a character record.
func (s *Store) SaveProgression(p game.Progression) error {
	if p.Name == "" {
		return errors.New("storage: progression has no name")
	}
	now := formatTime(time.Now())
	_, err := s.db.Exec(
		`INSERT INTO character_progression
		 (name, level, current_exp, total_exp, games_played, total_enemies_killed,
		  total_waves_completed, total_towers_built, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			level = excluded.level,
			current_exp = excluded.current_exp,
			total_exp = excluded.total_exp,
			games_played = excluded.games_played,
			total_enemies_killed = excluded.total_enemies_killed,
			total_waves_completed = excluded.total_waves_completed,
			total_towers_built = excluded.total_towers_built,
			updated_at = excluded.updated_at`,
		p.Name, p.Level, p.Exp, p.TotalExp, p.GamesPlayed, p.EnemiesKilled,
		p.WavesCompleted, p.TowersBuilt, now, now,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save progression: %w", err)
	}
	return nil
}

// Progressions lists every stored character, highest level first.
func (s *Store) Progressions() ([]game.Progression, error) {
	rows, err := s.db.Query(
		`SELECT name, level, current_exp, total_exp, games_played, total_enemies_killed,
		        total_waves_completed, total_towers_built, created_at, updated_at
		 FROM character_progression
		 ORDER BY level DESC, total_exp DESC, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query progressions: %w", err)
	}
	defer rows.Close()

	var out []game.Progression
	for rows.Next() {
		var p game.Progression
		var createdAt, updatedAt any
		if err := rows.Scan(&p.Name, &p.Level, &p.Exp, &p.TotalExp, &p.GamesPlayed, &p.EnemiesKilled,
			&p.WavesCompleted, &p.TowersBuilt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// RecordSession stores a match summary and its score. Recording the same
// match twice keeps the first record.
func (s *Store) RecordSession(r game.SessionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	ended := formatTime(r.EndedAt)
	if _, err := tx.Exec(
		`INSERT INTO game_sessions
		 (match_id, profile, character_name, score, wave_reached, enemies_killed, towers_built,
		  allies_summoned, time_elapsed, exp_gained, start_level, end_level, outcome, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO NOTHING`,
		r.MatchID, r.Profile, r.Character, r.Score, r.WaveReached, r.Kills, r.TowersBuilt,
		r.AlliesSummoned, r.Elapsed, r.ExpGained, r.StartLevel, r.EndLevel, r.Outcome, ended,
	); err != nil {
		return fmt.Errorf("storage: cannot record session: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO scores (match_id, profile, score, wave_reached, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO NOTHING`,
		r.MatchID, r.Profile, r.Score, r.WaveReached, ended,
	); err != nil {
		return fmt.Errorf("storage: cannot save score: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit session: %w", err)
	}
	return nil
}

// Sessions returns the most recent sessions of a profile, or of everyone
// when profile is empty.
func (s *Store) Sessions(profile string, limit int) ([]game.SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT match_id, profile, character_name, score, wave_reached, enemies_killed, towers_built,
		        allies_summoned, time_elapsed, exp_gained, start_level, end_level, outcome, ended_at
		 FROM game_sessions
		 WHERE ? = '' OR profile = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		profile, profile, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var out []game.SessionRecord
	for rows.Next() {
		var r game.SessionRecord
		var ended any
		if err := rows.Scan(&r.MatchID, &r.Profile, &r.Character, &r.Score, &r.WaveReached, &r.Kills,
			&r.TowersBuilt, &r.AlliesSummoned, &r.Elapsed, &r.ExpGained, &r.StartLevel, &r.EndLevel,
			&r.Outcome, &ended); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.EndedAt = parseTime(ended)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// TopScores retrieves the top N scores across all profiles.
// Results are ordered by score descending.
func (s *Store) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, profile, score, wave_reached, created_at
		 FROM scores
		 ORDER BY score DESC, id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Profile, &e.Score, &e.Wave, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest recorded score, or 0 if none exist.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(score) FROM scores").Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores.
func (s *Store) ClearScores() error {
	_, err := s.db.Exec("DELETE FROM scores")
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// ProfileStats contains aggregated session statistics for a profile.
type ProfileStats struct {
	Profile    string
	Sessions   int
	HighScore  int
	AvgScore   float64
	BestWave   int
	TotalKills int
	LastPlayed time.Time
}

// Stats retrieves aggregated statistics for a profile.
func (s *Store) Stats(profile string) (*ProfileStats, error) {
	stats := &ProfileStats{Profile: profile}
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(MAX(wave_reached), 0), COALESCE(SUM(enemies_killed), 0), MAX(ended_at)
		 FROM game_sessions WHERE profile = ?`,
		profile,
	).Scan(&stats.Sessions, &stats.HighScore, &stats.AvgScore, &stats.BestWave, &stats.TotalKills, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get profile stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}
