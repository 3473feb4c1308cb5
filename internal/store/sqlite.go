package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"celebration/internal/celebration"
	"celebration/internal/models"
)

// SQLiteStore keeps profiles in a local sqlite file with the data document
// stored as JSON. It implements the same gateway semantics as the remote
// backend so the server can run self-contained.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS birthday_profiles (
        profile_id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        birthday TEXT NOT NULL,
        data TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME
    )`)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports backend reachability for the health endpoint.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var (
		p       models.Profile
		rawData string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT profile_id, name, birthday, data FROM birthday_profiles WHERE profile_id = ?`, id,
	).Scan(&p.ProfileID, &p.Name, &p.Birthday, &rawData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	if err := json.Unmarshal([]byte(rawData), &p.Data); err != nil {
		return nil, fmt.Errorf("decoding profile data: %w", err)
	}

	return &p, nil
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, params UpsertParams) (*models.Profile, error) {
	data := celebration.Seed()
	if params.Data != nil {
		data = *params.Data
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile data: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO birthday_profiles (profile_id, name, birthday, data, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(profile_id) DO UPDATE SET
             name = excluded.name,
             birthday = excluded.birthday,
             data = excluded.data,
             updated_at = excluded.updated_at`,
		params.ProfileID, params.Name, params.Birthday, string(rawData), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}

	return s.GetProfile(ctx, params.ProfileID)
}

func (s *SQLiteStore) UpdateProfileData(ctx context.Context, id string, data celebration.Data) (*models.Profile, error) {
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile data: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE birthday_profiles SET data = ?, updated_at = ? WHERE profile_id = ?`,
		string(rawData), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating profile data: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetProfile(ctx, id)
}
