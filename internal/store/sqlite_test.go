package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"celebration/internal/celebration"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestGetProfileMissingRow(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetProfile(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfile() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertProfileIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	params := UpsertParams{ProfileID: "abc123", Name: "Olivia", Birthday: "2000-05-14"}

	first, err := s.UpsertProfile(context.Background(), params)
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	second, err := s.UpsertProfile(context.Background(), params)
	if err != nil {
		t.Fatalf("second UpsertProfile() error = %v", err)
	}

	if first.ProfileID != second.ProfileID {
		t.Fatalf("profile ids differ: %q vs %q", first.ProfileID, second.ProfileID)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM birthday_profiles`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count = %d, want 1", count)
	}
}

func TestUpsertProfileSeedsDefaultData(t *testing.T) {
	s := openTestStore(t)

	profile, err := s.UpsertProfile(context.Background(), UpsertParams{
		ProfileID: "abc123", Name: "Olivia", Birthday: "2000-05-14",
	})
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	seed := celebration.Seed()
	if len(profile.Data.Affirmations) != len(seed.Affirmations) {
		t.Fatalf("affirmations = %+v, want seed affirmations", profile.Data.Affirmations)
	}
	if len(profile.Data.Plans) != len(seed.Plans) {
		t.Fatalf("plans = %+v, want seed plans", profile.Data.Plans)
	}
}

func TestUpdateProfileDataRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.UpsertProfile(context.Background(), UpsertParams{
		ProfileID: "abc123", Name: "Olivia", Birthday: "2000-05-14",
	}); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	doc := celebration.Seed()
	doc.Wishes = []celebration.Wish{{ID: "w1", Message: "happy birthday", Sender: "sam", Likes: 2}}

	updated, err := s.UpdateProfileData(context.Background(), "abc123", doc)
	if err != nil {
		t.Fatalf("UpdateProfileData() error = %v", err)
	}
	if len(updated.Data.Wishes) != 1 || updated.Data.Wishes[0].Message != "happy birthday" {
		t.Fatalf("updated wishes = %+v, want the written wish", updated.Data.Wishes)
	}

	loaded, err := s.GetProfile(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if len(loaded.Data.Wishes) != 1 || loaded.Data.Wishes[0].Sender != "sam" {
		t.Fatalf("loaded wishes = %+v, want the written wish", loaded.Data.Wishes)
	}
}

func TestUpdateProfileDataMissingRow(t *testing.T) {
	s := openTestStore(t)

	_, err := s.UpdateProfileData(context.Background(), "missing", celebration.Seed())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateProfileData() error = %v, want ErrNotFound", err)
	}
}
