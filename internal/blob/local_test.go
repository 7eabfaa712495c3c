package blob

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	data := []byte{0xFF, 0xD8, 1, 2, 3}

	ref, err := s.Save(context.Background(), data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: %v != %v", got, data)
	}
}

func TestSaveEmptyPayload(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save(context.Background(), nil); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("err = %v, want ErrEmptyPayload", err)
	}
	// после отказа в каталоге не должно остаться хвостов
	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestSaveGeneratesUniqueRefs(t *testing.T) {
	s := newTestStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref, err := s.Save(context.Background(), []byte{1})
		if err != nil {
			t.Fatal(err)
		}
		if seen[ref] {
			t.Fatalf("duplicate ref %s", ref)
		}
		seen[ref] = true
	}
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load(context.Background(), "nope.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// попытка выйти из каталога — тоже not found
	if _, err := s.Load(context.Background(), "../secret"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for path escape", err)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	oldRef, err := s.Save(ctx, []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	// состарим файл руками
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(s.dir, oldRef), past, past); err != nil {
		t.Fatal(err)
	}
	freshRef, err := s.Save(ctx, []byte{2})
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.PurgeOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := s.Load(ctx, oldRef); !errors.Is(err, ErrNotFound) {
		t.Errorf("old blob survived purge")
	}
	if _, err := s.Load(ctx, freshRef); err != nil {
		t.Errorf("fresh blob purged: %v", err)
	}

	if _, err := s.PurgeOlderThan(ctx, 0); err == nil {
		t.Error("want error for non-positive olderThan")
	}
}
