package store

import (
	"path/filepath"
	"testing"

	"github.com/erigontech/mdbx-go/mdbx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &Config{DataDir: filepath.Join(t.TempDir(), "lws.mdbx"), MaxSizeMB: 64}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesAllTables(t *testing.T) {
	s := openTestStore(t)
	for _, name := range tableNames {
		if _, ok := s.dbis[name]; !ok {
			t.Errorf("table %q was not opened", name)
		}
	}
}

func TestTryWritePersistsAcrossView(t *testing.T) {
	s := openTestStore(t)

	key := []byte{0, 0, 0, 0}
	value := []byte("hello")

	err := s.TryWrite(func(w *Writer) error {
		return w.Put(TableBlocks, key, value)
	})
	if err != nil {
		t.Fatalf("TryWrite() error = %v", err)
	}

	err = s.View(func(r *Reader) error {
		got, err := r.Get(TableBlocks, key)
		if err != nil {
			return err
		}
		if string(got) != "hello" {
			t.Errorf("Get() = %q, want %q", got, "hello")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.View(func(r *Reader) error {
		_, err := r.Get(TableBlocks, []byte{9, 9, 9, 9})
		if mdbx.ErrorCode(err) != mdbx.NotFound {
			t.Errorf("Get() error = %v, want NotFound", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
}

func TestBeginReadAndRenew(t *testing.T) {
	s := openTestStore(t)

	if err := s.TryWrite(func(w *Writer) error {
		return w.Put(TableBlocks, []byte{0, 0, 0, 0}, []byte("v1"))
	}); err != nil {
		t.Fatalf("TryWrite() error = %v", err)
	}

	r, err := s.BeginRead()
	if err != nil {
		t.Fatalf("BeginRead() error = %v", err)
	}
	defer r.Close()

	if err := s.TryWrite(func(w *Writer) error {
		return w.Put(TableBlocks, []byte{0, 0, 0, 1}, []byte("v2"))
	}); err != nil {
		t.Fatalf("TryWrite() error = %v", err)
	}

	if err := r.Renew(); err != nil {
		t.Fatalf("Renew() error = %v", err)
	}

	got, err := r.Get(TableBlocks, []byte{0, 0, 0, 1})
	if err != nil {
		t.Fatalf("Get() after renew error = %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("Get() after renew = %q, want %q", got, "v2")
	}
}
