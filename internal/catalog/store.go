package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Song is one catalog entry. The catalog is the single source of truth for
// song identity; everything else in the pipeline handles songs by value.
type Song struct {
	SongID         string
	Title          string
	OriginalArtist string
	Aliases        []string
	Embedding      []float64
}

// Lyrics is the stored lyric text for a song.
type Lyrics struct {
	SongID    string
	Text      string
	Source    string
	UpdatedAt string
}

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applySchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS songs (
            song_id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            original_artist TEXT NOT NULL,
            aliases TEXT NOT NULL DEFAULT '[]'
        )`,
		`CREATE TABLE IF NOT EXISTS song_embeddings (
            song_id TEXT PRIMARY KEY,
            embedding TEXT NOT NULL,
            FOREIGN KEY (song_id) REFERENCES songs(song_id) ON DELETE CASCADE
        )`,
		`CREATE TABLE IF NOT EXISTS song_lyrics (
            song_id TEXT PRIMARY KEY,
            lyrics_text TEXT NOT NULL,
            source TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            FOREIGN KEY (song_id) REFERENCES songs(song_id) ON DELETE CASCADE
        )`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// LoadAll returns every song, joined with its stored embedding, in stable
// song_id order. The order is part of the matching contract: fallback scores
// derive from the catalog position.
func (s *Store) LoadAll(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT songs.song_id, songs.title, songs.original_artist, songs.aliases,
               song_embeddings.embedding
        FROM songs
        LEFT JOIN song_embeddings ON songs.song_id = song_embeddings.song_id
        ORDER BY songs.song_id`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		var aliasesRaw string
		var embeddingRaw sql.NullString
		if err := rows.Scan(&song.SongID, &song.Title, &song.OriginalArtist, &aliasesRaw, &embeddingRaw); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		song.Aliases = parseStringList(aliasesRaw)
		if embeddingRaw.Valid {
			song.Embedding = parseEmbedding(embeddingRaw.String)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return songs, nil
}

// LyricsFor returns the stored lyrics for a song, or ok=false when none exist.
func (s *Store) LyricsFor(ctx context.Context, songID string) (Lyrics, bool, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT song_id, lyrics_text, source, updated_at
        FROM song_lyrics WHERE song_id = ?`, songID)
	var lyrics Lyrics
	err := row.Scan(&lyrics.SongID, &lyrics.Text, &lyrics.Source, &lyrics.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lyrics{}, false, nil
	}
	if err != nil {
		return Lyrics{}, false, fmt.Errorf("load lyrics: %w", err)
	}
	return lyrics, true, nil
}

// UpsertSong inserts or updates a catalog song and its embedding.
func (s *Store) UpsertSong(ctx context.Context, song Song) error {
	aliases, err := json.Marshal(stringListOrEmpty(song.Aliases))
	if err != nil {
		return fmt.Errorf("marshal aliases: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO songs (song_id, title, original_artist, aliases)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(song_id) DO UPDATE SET
            title = excluded.title,
            original_artist = excluded.original_artist,
            aliases = excluded.aliases`,
		song.SongID, song.Title, song.OriginalArtist, string(aliases)); err != nil {
		return fmt.Errorf("upsert song: %w", err)
	}
	if len(song.Embedding) == 0 {
		return nil
	}
	embedding, err := json.Marshal(song.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO song_embeddings (song_id, embedding)
        VALUES (?, ?)
        ON CONFLICT(song_id) DO UPDATE SET embedding = excluded.embedding`,
		song.SongID, string(embedding)); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// UpsertLyrics stores or replaces lyric text for a song.
func (s *Store) UpsertLyrics(ctx context.Context, songID, text, source string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO song_lyrics (song_id, lyrics_text, source, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(song_id) DO UPDATE SET
            lyrics_text = excluded.lyrics_text,
            source = excluded.source,
            updated_at = excluded.updated_at`,
		songID, text, source, timestamp); err != nil {
		return fmt.Errorf("upsert lyrics: %w", err)
	}
	return nil
}

// FindByTitleArtist looks a song up by normalized title and artist, matching
// aliases as alternative titles.
func (s *Store) FindByTitleArtist(ctx context.Context, title, artist string) (Song, bool, error) {
	songs, err := s.LoadAll(ctx)
	if err != nil {
		return Song{}, false, err
	}
	wantTitle := Normalize(title)
	wantArtist := Normalize(artist)
	for _, song := range songs {
		if Normalize(song.OriginalArtist) != wantArtist {
			continue
		}
		if Normalize(song.Title) == wantTitle {
			return song, true, nil
		}
		for _, alias := range song.Aliases {
			if Normalize(alias) == wantTitle {
				return song, true, nil
			}
		}
	}
	return Song{}, false, nil
}

func parseStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseEmbedding(raw string) []float64 {
	if raw == "" {
		return nil
	}
	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func stringListOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
