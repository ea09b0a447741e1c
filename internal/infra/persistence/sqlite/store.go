// Package sqlite mirrors the in-memory retail state into an embedded SQLite
// database held entirely in memory. The mirror gives operators a SQL surface
// over live state without introducing restart persistence; nothing is written
// to disk and the database vanishes with the process.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"retailcore/internal/infra/persistence/memory"
	"retailcore/pkg/domain"
)

var dbSeq uint64

// memoryDSN names a per-store database held in process memory. cache=shared
// lets the connection pool see one database; the unique name isolates store
// instances from each other.
func memoryDSN() string {
	return fmt.Sprintf("file:retailcore-%d?mode=memory&cache=shared", atomic.AddUint64(&dbSeq, 1))
}

// Store wraps the in-memory store and snapshots the full state into a single
// SQLite table as JSON blobs after every successful transaction.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore constructs a mirroring SQLite-backed store.
func NewStore(engine *domain.RulesEngine) (*Store, error) {
	db, err := sql.Open("sqlite", memoryDSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{Store: memory.NewStore(engine), db: db}, nil
}

var buckets = []string{"products", "customers", "sellers", "sales", "users"}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "products":
			data, err = json.Marshal(snapshot.Products)
		case "customers":
			data, err = json.Marshal(snapshot.Customers)
		case "sellers":
			data, err = json.Marshal(snapshot.Sellers)
		case "sales":
			data, err = json.Marshal(snapshot.Sales)
		case "users":
			data, err = json.Marshal(snapshot.Users)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then mirrors the committed
// state into SQLite.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// DB exposes the underlying sql.DB for inspection and tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

var _ domain.Store = (*Store)(nil)
