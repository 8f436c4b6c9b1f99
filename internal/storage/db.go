// Package storage holds the persistence collaborators: the SQLite
// application store, local audio file placement and the Redis cache.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lyricsync/lyricsync/internal/lrc"
	"github.com/lyricsync/lyricsync/internal/points"
)

// ErrNotFound marks a lookup with no matching row. Loading lyrics for a song
// nobody has synchronized yet is a normal empty state, not a failure.
var ErrNotFound = errors.New("not found")

// Song lifecycle statuses.
const (
	StatusDraft             = "draft"
	StatusProcessing        = "processing"
	StatusPendingSync       = "pending_sync"
	StatusSyncing           = "syncing"
	StatusPendingValidation = "pending_validation"
	StatusPublished         = "published"
	StatusRejected          = "rejected"
)

// Song is a track awaiting or carrying synchronized lyrics.
type Song struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ArtistName      string    `json:"artist_name"`
	Album           string    `json:"album,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	AudioPath       string    `json:"audio_path"`
	LyricsText      string    `json:"lyrics_text"`
	Status          string    `json:"status"`
	SubmittedBy     string    `json:"submitted_by,omitempty"`
	HasSyncedLyrics bool      `json:"has_synced_lyrics"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Contribution records one rewarded user action.
type Contribution struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SongID       string    `json:"song_id"`
	Type         string    `json:"type"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the SQLite-backed application datastore.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and creates the schema when missing.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist_name TEXT NOT NULL,
		album TEXT,
		duration_seconds REAL,
		audio_path TEXT NOT NULL,
		lyrics_text TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_by TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lrc_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		song_id TEXT NOT NULL,
		synced_lyrics TEXT NOT NULL,
		source TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contributions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		song_id TEXT NOT NULL,
		type TEXT NOT NULL,
		points_earned INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		points INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_songs_status ON songs(status);
	CREATE INDEX IF NOT EXISTS idx_lrc_song_version ON lrc_files(song_id, version);
	CREATE INDEX IF NOT EXISTS idx_contrib_user ON contributions(user_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// CreateSong inserts a new song row.
func (s *Store) CreateSong(ctx context.Context, song *Song) error {
	now := time.Now()
	song.CreatedAt = now
	song.UpdatedAt = now
	if song.Status == "" {
		song.Status = StatusDraft
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO songs (id, title, artist_name, album, duration_seconds, audio_path, lyrics_text, status, submitted_by, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID, song.Title, song.ArtistName, song.Album, song.DurationSeconds,
		song.AudioPath, song.LyricsText, song.Status, song.SubmittedBy,
		song.CreatedAt, song.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

// GetSong loads a song by id.
func (s *Store) GetSong(ctx context.Context, id string) (*Song, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT s.id, s.title, s.artist_name, COALESCE(s.album, ''), COALESCE(s.duration_seconds, 0),
	       s.audio_path, s.lyrics_text, s.status, COALESCE(s.submitted_by, ''),
	       s.created_at, s.updated_at,
	       EXISTS(SELECT 1 FROM lrc_files l WHERE l.song_id = s.id)
	FROM songs s WHERE s.id = ?`, id)

	var song Song
	err := row.Scan(&song.ID, &song.Title, &song.ArtistName, &song.Album,
		&song.DurationSeconds, &song.AudioPath, &song.LyricsText, &song.Status,
		&song.SubmittedBy, &song.CreatedAt, &song.UpdatedAt, &song.HasSyncedLyrics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return &song, nil
}

// ListSongs returns one page of songs in the given status, newest first,
// along with the total match count for pagination.
func (s *Store) ListSongs(ctx context.Context, status string, page, limit int) ([]Song, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM songs WHERE status = ?`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count songs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT s.id, s.title, s.artist_name, COALESCE(s.album, ''), COALESCE(s.duration_seconds, 0),
	       s.audio_path, s.lyrics_text, s.status, COALESCE(s.submitted_by, ''),
	       s.created_at, s.updated_at,
	       EXISTS(SELECT 1 FROM lrc_files l WHERE l.song_id = s.id)
	FROM songs s WHERE s.status = ?
	ORDER BY s.created_at DESC LIMIT ? OFFSET ?`, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Title, &song.ArtistName, &song.Album,
			&song.DurationSeconds, &song.AudioPath, &song.LyricsText, &song.Status,
			&song.SubmittedBy, &song.CreatedAt, &song.UpdatedAt, &song.HasSyncedLyrics); err != nil {
			return nil, 0, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, total, rows.Err()
}

// FinishIngest writes the results of the ingest pipeline back onto the song
// row: probed metadata, the final audio location and the next status.
func (s *Store) FinishIngest(ctx context.Context, song *Song) error {
	song.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
	UPDATE songs SET title = ?, artist_name = ?, album = ?, duration_seconds = ?,
	       audio_path = ?, lyrics_text = ?, status = ?, updated_at = ?
	WHERE id = ?`,
		song.Title, song.ArtistName, song.Album, song.DurationSeconds,
		song.AudioPath, song.LyricsText, song.Status, song.UpdatedAt, song.ID)
	if err != nil {
		return fmt.Errorf("failed to finish ingest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSongStatus moves a song through its lifecycle.
func (s *Store) UpdateSongStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE songs SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update song status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveDocument stores a synced lyrics document for a song as a new version.
// Versions are a simple incrementing counter; concurrent synchronizers are
// last-write-wins at this layer.
func (s *Store) SaveDocument(ctx context.Context, songID string, doc lrc.Document) error {
	payload, err := json.Marshal(doc.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode synced lyrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO lrc_files (song_id, synced_lyrics, source, version, created_at)
	VALUES (?, ?, ?, COALESCE((SELECT MAX(version) FROM lrc_files WHERE song_id = ?), 0) + 1, ?)`,
		songID, string(payload), doc.Source, songID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save synced lyrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE songs SET status = ?, updated_at = ? WHERE id = ? AND status IN (?, ?, ?)`,
		StatusPendingValidation, time.Now(), songID, StatusPendingSync, StatusSyncing, StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to advance song status: %w", err)
	}
	return nil
}

// LoadDocument returns the latest synced document for a song and its
// version. ErrNotFound means nobody has synchronized the song yet.
func (s *Store) LoadDocument(ctx context.Context, songID string) (lrc.Document, int, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT synced_lyrics, source, version FROM lrc_files
	WHERE song_id = ? ORDER BY version DESC LIMIT 1`, songID)

	var (
		payload string
		doc     lrc.Document
		version int
	)
	err := row.Scan(&payload, &doc.Source, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return lrc.Document{}, 0, ErrNotFound
	}
	if err != nil {
		return lrc.Document{}, 0, fmt.Errorf("failed to load synced lyrics: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &doc.Lines); err != nil {
		return lrc.Document{}, 0, fmt.Errorf("failed to decode synced lyrics: %w", err)
	}
	return doc, version, nil
}

// AddContribution records a rewarded action and updates the contributor's
// running total and level. Returns the stored contribution.
func (s *Store) AddContribution(ctx context.Context, userID, songID, contribType string) (*Contribution, error) {
	earned := points.ForContribution(contribType)

	contrib := &Contribution{
		ID:           newID(),
		UserID:       userID,
		SongID:       songID,
		Type:         contribType,
		PointsEarned: earned,
		CreatedAt:    time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO contributions (id, user_id, song_id, type, points_earned, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		contrib.ID, contrib.UserID, contrib.SongID, contrib.Type, contrib.PointsEarned, contrib.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert contribution: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO profiles (user_id, points, level, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET points = points + excluded.points, updated_at = excluded.updated_at`,
		userID, earned, points.LevelFor(earned), time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update profile points: %w", err)
	}

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT points FROM profiles WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to read profile total: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET level = ? WHERE user_id = ?`, points.LevelFor(total), userID); err != nil {
		return nil, fmt.Errorf("failed to update profile level: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contribution: %w", err)
	}
	return contrib, nil
}

// UserPoints returns the running total and level for a user. A user with no
// contributions yet is level 1 with zero points.
func (s *Store) UserPoints(ctx context.Context, userID string) (int, int, error) {
	var total, level int
	err := s.db.QueryRowContext(ctx,
		`SELECT points, level FROM profiles WHERE user_id = ?`, userID).Scan(&total, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 1, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read profile: %w", err)
	}
	return total, level, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func newID() string {
	return uuid.New().String()
}
