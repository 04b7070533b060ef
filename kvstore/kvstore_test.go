package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "imageHistory"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: expected ErrNotFound, got %v", err)
	}

	if err := s.Put(ctx, "imageHistory", []byte(`[1]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "imageHistory", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := s.Get(ctx, "imageHistory")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Get = %s, want [1,2]", got)
	}
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	value := []byte("abc")
	if err := m.Put(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'

	got, _ := m.Get(ctx, "k")
	got[1] = 'y'

	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated: %s", again)
	}
}

func TestFile(t *testing.T) {
	testStore(t, NewFile(filepath.Join(t.TempDir(), "store")))
}

func TestFile_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	f := NewFile(dir)

	if err := f.Put(context.Background(), "imageHistory", []byte("[]")); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "imageHistory.json"))
	if err != nil {
		t.Fatalf("expected value file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(filepath.Join(dir, "imageHistory.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestFile_InvalidKey(t *testing.T) {
	f := NewFile(t.TempDir())

	for _, key := range []string{"", "../escape", "a/b", "sp ace"} {
		if err := f.Put(context.Background(), key, nil); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := f.Get(context.Background(), key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Get(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestOpenRedis_BadURL(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "not-a-url", "imagestudio:"); err == nil {
		t.Error("expected error for invalid redis url")
	}
}

func newMiniRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0", "imagestudio:")
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis(t *testing.T) {
	r, _ := newMiniRedis(t)
	testStore(t, r)
}

func TestRedis_KeyPrefix(t *testing.T) {
	r, mr := newMiniRedis(t)

	if err := r.Put(context.Background(), "imageHistory", []byte("[]")); err != nil {
		t.Fatal(err)
	}

	got, err := mr.Get("imagestudio:imageHistory")
	if err != nil {
		t.Fatalf("prefixed key missing: %v", err)
	}
	if got != "[]" {
		t.Errorf("stored value = %q", got)
	}
	if ttl := mr.TTL("imagestudio:imageHistory"); ttl != 0 {
		t.Errorf("ttl = %v, want no expiry", ttl)
	}
}

func TestRedis_ServerDown(t *testing.T) {
	r, mr := newMiniRedis(t)
	mr.Close()

	_, err := r.Get(context.Background(), "imageHistory")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected connection error, got %v", err)
	}
}
