package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/cryptonote-lws/lws/pkg/logging"
)

// Config configures the on-disk environment.
type Config struct {
	DataDir string

	// MaxSizeMB bounds the memory-mapped size; mdbx grows the backing file
	// lazily up to this ceiling.
	MaxSizeMB int64
}

// DefaultConfig returns sane defaults for a single-node light-wallet
// backend instance.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   "data",
		MaxSizeMB: 1 << 17, // 128 GiB ceiling; mdbx only maps pages it uses
	}
}

// Store owns one mdbx environment and the opened DBI handles for every
// table in §3.2.
type Store struct {
	env  *mdbx.Env
	dbis map[string]mdbx.DBI
	log  *logging.Logger
	path string
}

// Open creates the data directory if needed, opens (or initializes) the
// mdbx environment, and opens every table's DBI inside one write
// transaction. Genesis seeding and the invariant-1 network check are the
// caller's responsibility (internal/accountstore.EnsureGenesis) — Open only
// guarantees every table exists.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("store: resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("store: new env: %w", err)
	}

	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(tableNames))); err != nil {
		env.Close()
		return nil, fmt.Errorf("store: set max dbs: %w", err)
	}

	geometry := cfg.MaxSizeMB * 1024 * 1024
	if err := env.SetGeometry(-1, -1, int(geometry), -1, -1, -1); err != nil {
		env.Close()
		return nil, fmt.Errorf("store: set geometry: %w", err)
	}

	if err := env.Open(dataDir, mdbx.NoSubdir|mdbx.Coalesce|mdbx.LifoReclaim, 0o600); err != nil {
		env.Close()
		return nil, fmt.Errorf("store: open env at %s: %w", dataDir, err)
	}

	s := &Store{
		env:  env,
		dbis: make(map[string]mdbx.DBI, len(tableNames)),
		log:  logging.GetDefault().Component("store"),
		path: dataDir,
	}

	if err := s.openTables(); err != nil {
		env.Close()
		return nil, err
	}

	s.log.Info("store opened", "path", dataDir)
	return s, nil
}

func (s *Store) openTables() error {
	return s.env.Update(func(txn *mdbx.Txn) error {
		for _, name := range tableNames {
			dbi, err := txn.OpenDBI(name, dbiFlags, nil, nil)
			if err != nil {
				return fmt.Errorf("store: open table %q: %w", name, err)
			}
			s.dbis[name] = dbi
		}
		return nil
	})
}

// DBI returns the opened handle for a table, panicking on an unknown name
// since table names are a closed, compile-time-known set.
func (s *Store) dbi(table string) mdbx.DBI {
	dbi, ok := s.dbis[table]
	if !ok {
		panic("store: unknown table " + table)
	}
	return dbi
}

// Close flushes and releases the environment.
func (s *Store) Close() error {
	s.env.Close()
	return nil
}

// Path returns the resolved data directory.
func (s *Store) Path() string { return s.path }

// writeRetries and writeRetryDelay bound TryWrite's backoff on transient
// contention.
var (
	writeRetries    = 5
	writeRetryDelay = 20 * time.Millisecond
)

// TryWrite runs fn inside a single read-write transaction, retrying with
// exponential backoff only on transient busy/full-txn conditions; any other
// error aborts the transaction immediately and is returned unmodified.
func (s *Store) TryWrite(fn func(w *Writer) error) error {
	var lastErr error
	delay := writeRetryDelay

	for attempt := 0; attempt < writeRetries; attempt++ {
		err := s.env.Update(func(txn *mdbx.Txn) error {
			return fn(&Writer{Reader: Reader{txn: txn, s: s}})
		})
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		s.log.Warn("write transaction retry", "attempt", attempt, "err", err)
		time.Sleep(delay)
		delay *= 2
	}
	return fmt.Errorf("store: write failed after %d attempts: %w", writeRetries, lastErr)
}

func isTransient(err error) bool {
	switch mdbx.ErrorCode(err) {
	case mdbx.Busy, mdbx.TxnFull, mdbx.MapFull:
		return true
	default:
		return false
	}
}

// View runs fn inside a read-only transaction/snapshot.
func (s *Store) View(fn func(r *Reader) error) error {
	return s.env.View(func(txn *mdbx.Txn) error {
		return fn(&Reader{txn: txn, s: s})
	})
}

// BeginRead opens a standalone read-only transaction the caller must Close
// when done — used by long-lived streaming iterators that need a cursor to
// outlive a single View callback.
func (s *Store) BeginRead() (*Reader, error) {
	txn, err := s.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, fmt.Errorf("store: begin read txn: %w", err)
	}
	return &Reader{txn: txn, s: s, owned: true}, nil
}

// Reader exposes read-only cursor access over one MDBX transaction.
type Reader struct {
	txn   *mdbx.Txn
	s     *Store
	owned bool
}

// Close aborts a Reader obtained via BeginRead. A no-op on Readers handed
// to a View callback (those are closed by View itself).
func (r *Reader) Close() {
	if r.owned {
		r.txn.Abort()
	}
}

// Renew refreshes a standalone read transaction to see the latest commit,
// the "suspend/renew" pattern for long-lived cursors that must periodically
// catch up without repeatedly reopening.
func (r *Reader) Renew() error {
	if !r.owned {
		return fmt.Errorf("store: Renew called on a non-owned reader")
	}
	return r.txn.Renew()
}

// Get fetches the first value for key in table, or mdbx.NotFound wrapped.
func (r *Reader) Get(table string, key []byte) ([]byte, error) {
	val, err := r.txn.Get(r.s.dbi(table), key)
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Cursor opens a cursor over table for manual dup-sorted iteration.
func (r *Reader) Cursor(table string) (*mdbx.Cursor, error) {
	return r.txn.OpenCursor(r.s.dbi(table))
}

// Writer extends Reader with mutation operations, valid only inside a
// TryWrite callback.
type Writer struct {
	Reader
}

// Put inserts (key, value) into a dup-sort table. Duplicate (key, value)
// pairs are silently ignored by mdbx itself when value bytes are identical;
// callers needing "ignore duplicate sort-prefix but different payload"
// semantics (invariant 7) must pre-check via a cursor GetBothRange.
func (w *Writer) Put(table string, key, value []byte) error {
	return w.txn.Put(w.s.dbi(table), key, value, 0)
}

// Delete removes one (key, value) pair from a dup-sort table.
func (w *Writer) Delete(table string, key, value []byte) error {
	return w.txn.Del(w.s.dbi(table), key, value)
}
