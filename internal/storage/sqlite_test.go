package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

// TestMigrationsOrdered verifies migrations are applied in ascending numeric order.
func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) < 2 {
		t.Fatalf("expected at least two applied migrations, got %v", versions)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", "idx_warnings_user").Scan(&count)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	if count != 1 {
		t.Error("index idx_warnings_user not found")
	}
}

func TestProfileRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetProfileRecord("42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfileRecord on empty store: err = %v, want ErrNotFound", err)
	}

	if err := s.PutProfileRecord("42", `{"pronouns":"she/her"}`); err != nil {
		t.Fatalf("PutProfileRecord: %v", err)
	}
	got, err := s.GetProfileRecord("42")
	if err != nil {
		t.Fatalf("GetProfileRecord: %v", err)
	}
	if got != `{"pronouns":"she/her"}` {
		t.Errorf("data = %q", got)
	}

	// Overwrite and verify upsert works.
	if err := s.PutProfileRecord("42", `{"pronouns":"they/them"}`); err != nil {
		t.Fatalf("PutProfileRecord (overwrite): %v", err)
	}
	got, err = s.GetProfileRecord("42")
	if err != nil {
		t.Fatalf("GetProfileRecord (overwrite): %v", err)
	}
	if got != `{"pronouns":"they/them"}` {
		t.Errorf("data after overwrite = %q", got)
	}

	n, err := s.CountProfiles()
	if err != nil {
		t.Fatalf("CountProfiles: %v", err)
	}
	if n != 1 {
		t.Errorf("CountProfiles = %d, want 1", n)
	}
}

func TestDeleteProfileRecord(t *testing.T) {
	s := openTestStore(t)

	if err := s.DeleteProfileRecord("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}

	if err := s.PutProfileRecord("7", `{}`); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProfileRecord("7"); err != nil {
		t.Fatalf("DeleteProfileRecord: %v", err)
	}
	if _, err := s.GetProfileRecord("7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("record still present after delete: %v", err)
	}
	if err := s.DeleteProfileRecord("7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestAllProfileRecords(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.PutProfileRecord(fmt.Sprint(i), fmt.Sprintf(`{"n":%d}`, i)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.AllProfileRecords()
	if err != nil {
		t.Fatalf("AllProfileRecords: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d records, want 5", len(got))
	}
	if got["3"] != `{"n":3}` {
		t.Errorf("record 3 = %q", got["3"])
	}
}

func TestReplaceProfileRecords(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutProfileRecord("old", `{}`); err != nil {
		t.Fatal(err)
	}
	err := s.ReplaceProfileRecords(map[string]string{
		"a": `{"triggers":["x"]}`,
		"b": `{}`,
	})
	if err != nil {
		t.Fatalf("ReplaceProfileRecords: %v", err)
	}

	got, err := s.AllProfileRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(got), got)
	}
	if _, ok := got["old"]; ok {
		t.Error("old record survived replace")
	}
}

func TestWarnings(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, reason := range []string{"spam", "slurs", "spoilers"} {
		w := Warning{
			ID:          fmt.Sprintf("w%d", i),
			GuildID:     "g1",
			UserID:      "u1",
			ModeratorID: "mod",
			Reason:      reason,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveWarning(w); err != nil {
			t.Fatalf("SaveWarning: %v", err)
		}
	}
	if err := s.SaveWarning(Warning{ID: "other", UserID: "u2", ModeratorID: "mod"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListWarnings("u1", 2)
	if err != nil {
		t.Fatalf("ListWarnings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d warnings, want 2", len(got))
	}
	if got[0].Reason != "spoilers" || got[1].Reason != "slurs" {
		t.Errorf("order = %q, %q; want newest first", got[0].Reason, got[1].Reason)
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("CreatedAt = %v", got[0].CreatedAt)
	}
}
