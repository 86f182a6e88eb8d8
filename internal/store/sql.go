package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	storemigrations "github.com/Black-And-White-Club/tripscore/internal/store/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	_ "modernc.org/sqlite"
)

// notifyChannel carries the changed collection name as payload.
const notifyChannel = "tripscore_store"

type recordRow struct {
	bun.BaseModel `bun:"table:store_records"`

	Collection string    `bun:"collection,pk"`
	Key        string    `bun:"key,pk"`
	Value      string    `bun:"value,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// SQLStore keeps records in the store_records table. On Postgres it
// announces writes with NOTIFY and pushes changes to subscribers through a
// LISTEN connection; on SQLite subscriptions are no-ops.
type SQLStore struct {
	db      *bun.DB
	backend string
	logger  *slog.Logger
	metrics metrics.StoreMetrics

	mu        sync.Mutex
	listeners map[string]map[int]Listener
	nextID    int
	ln        *pgdriver.Listener

	// held across reload and fan-out so snapshots arrive in load order
	dispatching map[string]*sync.Mutex
}

// NewSQLStore wraps an already migrated database.
func NewSQLStore(db *bun.DB, backend string, logger *slog.Logger, m metrics.StoreMetrics) *SQLStore {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &SQLStore{
		db:          db,
		backend:     backend,
		logger:      logger,
		metrics:     m,
		listeners:   make(map[string]map[int]Listener),
		dispatching: make(map[string]*sync.Mutex),
	}
}

// OpenPostgres connects with pgdriver, pings and applies the store migrations.
func OpenPostgres(ctx context.Context, dsn string, timeout time.Duration, logger *slog.Logger, m metrics.StoreMetrics) (*SQLStore, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pgdb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(pgdb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, unavailable(BackendPostgres, "connect", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, unavailable(BackendPostgres, "migrate", err)
	}

	logger.InfoContext(ctx, "Postgres store ready")
	return NewSQLStore(db, BackendPostgres, logger, m), nil
}

// OpenLocal opens (or creates) the SQLite file used as the local-only store.
func OpenLocal(ctx context.Context, path string, logger *slog.Logger, m metrics.StoreMetrics) (*SQLStore, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure local store: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	logger.InfoContext(ctx, "Local store ready", attr.String("path", path))
	return NewSQLStore(db, BackendLocal, logger, m), nil
}

// Migrate applies the store_records migrations.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, storemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run store migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) Backend() string { return s.backend }

// DB exposes the handle for migrations and the job queue.
func (s *SQLStore) DB() *bun.DB { return s.db }

func (s *SQLStore) Get(ctx context.Context, collection string) ([]Record, error) {
	recs, err := s.get(ctx, s.db, collection)
	s.metrics.RecordStoreOperation(s.backend, collection, "get", err)
	return recs, err
}

func (s *SQLStore) get(ctx context.Context, db bun.IDB, collection string) ([]Record, error) {
	if err := ValidateKey(collection); err != nil {
		return nil, err
	}
	var rows []recordRow
	err := db.NewSelect().
		Model(&rows).
		Where("collection = ?", collection).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, unavailable(s.backend, "get", err)
	}
	recs := make([]Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, Record{Key: r.Key, Value: []byte(r.Value)})
	}
	return recs, nil
}

func (s *SQLStore) Put(ctx context.Context, collection string, rec Record) error {
	err := s.put(ctx, collection, rec)
	s.metrics.RecordStoreOperation(s.backend, collection, "put", err)
	if err == nil {
		s.notify(ctx, collection)
	}
	return err
}

func (s *SQLStore) put(ctx context.Context, collection string, rec Record) error {
	if err := validateRecords(collection, []Record{rec}); err != nil {
		return err
	}
	row := &recordRow{
		Collection: collection,
		Key:        rec.Key,
		Value:      string(rec.Value),
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (collection, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return unavailable(s.backend, "put", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, key string) error {
	err := s.delete(ctx, collection, key)
	s.metrics.RecordStoreOperation(s.backend, collection, "delete", err)
	if err == nil {
		s.notify(ctx, collection)
	}
	return err
}

func (s *SQLStore) delete(ctx context.Context, collection, key string) error {
	if err := validateRecords(collection, []Record{{Key: key}}); err != nil {
		return err
	}
	_, err := s.db.NewDelete().
		Model((*recordRow)(nil)).
		Where("collection = ?", collection).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return unavailable(s.backend, "delete", err)
	}
	return nil
}

// Set replaces the collection inside one transaction.
func (s *SQLStore) Set(ctx context.Context, collection string, recs []Record) error {
	err := s.set(ctx, collection, recs)
	s.metrics.RecordStoreOperation(s.backend, collection, "set", err)
	if err == nil {
		s.notify(ctx, collection)
	}
	return err
}

func (s *SQLStore) set(ctx context.Context, collection string, recs []Record) error {
	if err := validateRecords(collection, recs); err != nil {
		return err
	}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*recordRow)(nil)).
			Where("collection = ?", collection).
			Exec(ctx); err != nil {
			return err
		}
		rows := toRows(collection, recs)
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return unavailable(s.backend, "set", err)
	}
	return nil
}

func (s *SQLStore) InitializeIfEmpty(ctx context.Context, collection string, recs []Record) (bool, error) {
	if err := validateRecords(collection, recs); err != nil {
		return false, err
	}
	seeded := false
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().
			Model((*recordRow)(nil)).
			Where("collection = ?", collection).
			Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		rows := toRows(collection, recs)
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (collection, key) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	s.metrics.RecordStoreOperation(s.backend, collection, "initialize", err)
	if err != nil {
		return false, unavailable(s.backend, "initialize", err)
	}
	if seeded {
		s.notify(ctx, collection)
	}
	return seeded, nil
}

func toRows(collection string, recs []Record) []recordRow {
	now := time.Now().UTC()
	rows := make([]recordRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, recordRow{
			Collection: collection,
			Key:        r.Key,
			Value:      string(r.Value),
			UpdatedAt:  now,
		})
	}
	return rows
}

func (s *SQLStore) notify(ctx context.Context, collection string) {
	if s.backend != BackendPostgres {
		return
	}
	if _, err := s.db.ExecContext(ctx, "SELECT pg_notify(?, ?)", notifyChannel, collection); err != nil {
		s.logger.WarnContext(ctx, "Failed to notify store change",
			attr.String("collection", collection),
			attr.Error(err),
		)
	}
}

// Subscribe registers fn for collection. Only the Postgres backend observes
// writes from other processes; the local backend returns a no-op.
func (s *SQLStore) Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error) {
	if err := ValidateKey(collection); err != nil {
		return nil, err
	}
	if s.backend != BackendPostgres {
		return noopUnsubscribe, nil
	}

	s.mu.Lock()
	if s.ln == nil {
		ln := pgdriver.NewListener(s.db)
		if err := ln.Listen(ctx, notifyChannel); err != nil {
			s.mu.Unlock()
			_ = ln.Close()
			return nil, unavailable(s.backend, "listen", err)
		}
		s.ln = ln
		go s.dispatchLoop(ln)
	}
	if s.listeners[collection] == nil {
		s.listeners[collection] = make(map[int]Listener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[collection][id] = fn
	s.mu.Unlock()

	go s.dispatch(collection)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners[collection], id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *SQLStore) dispatchLoop(ln *pgdriver.Listener) {
	for n := range ln.Channel() {
		s.dispatch(n.Payload)
	}
}

func (s *SQLStore) dispatch(collection string) {
	s.mu.Lock()
	dl, ok := s.dispatching[collection]
	if !ok {
		dl = &sync.Mutex{}
		s.dispatching[collection] = dl
	}
	s.mu.Unlock()
	dl.Lock()
	defer dl.Unlock()

	s.mu.Lock()
	fns := make([]Listener, 0, len(s.listeners[collection]))
	for _, fn := range s.listeners[collection] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recs, err := s.Get(ctx, collection)
	if err != nil {
		s.logger.Warn("Failed to reload collection after notification",
			attr.String("collection", collection),
			attr.Error(err),
		)
		return
	}
	for _, fn := range fns {
		fn(recs)
	}
}

func (s *SQLStore) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
