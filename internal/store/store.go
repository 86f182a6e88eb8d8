// Package store is the score store adapter: a keyed record store with push
// subscriptions, backed by NATS JetStream KV, Postgres or a local SQLite file.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Collection names shared by the ledgers.
const (
	CollectionRoundScores  = "roundScores"
	CollectionSpecialShots = "specialShots"
	CollectionPlayers      = "players"
)

// Backend names.
const (
	BackendNATS     = "nats"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

var (
	// ErrUnavailable matches every error caused by an unreachable or failing backend.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalidKey is returned for keys or collection names outside [A-Za-z0-9_-.].
	ErrInvalidKey = errors.New("invalid store key")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+(\.[A-Za-z0-9_\-]+)*$`)

// UnavailableError wraps a backend failure. Callers keep their in-memory
// state and may retry the write.
type UnavailableError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s store %s failed: %v", e.Backend, e.Operation, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func unavailable(backend, op string, err error) error {
	return &UnavailableError{Backend: backend, Operation: op, Err: err}
}

// Record is one keyed JSON document inside a collection.
type Record struct {
	Key   string
	Value []byte
}

// Listener receives the full, key-ordered contents of a collection each time
// it changes.
type Listener func(records []Record)

// Unsubscribe revokes a subscription. It is safe to call more than once.
type Unsubscribe func()

// Store is implemented by every backend.
type Store interface {
	Backend() string
	// Get returns the collection ordered by key.
	Get(ctx context.Context, collection string) ([]Record, error)
	// Put inserts or replaces one record by key.
	Put(ctx context.Context, collection string, rec Record) error
	// Delete removes a record. Deleting an absent key is not an error.
	Delete(ctx context.Context, collection, key string) error
	// Set replaces the whole collection.
	Set(ctx context.Context, collection string, recs []Record) error
	// Subscribe pushes the collection to fn on every change. Backends that
	// cannot observe remote writes return a no-op subscription.
	Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error)
	// InitializeIfEmpty writes recs only when the collection has no records
	// and reports whether it did.
	InitializeIfEmpty(ctx context.Context, collection string, recs []Record) (bool, error)
	Close() error
}

// ValidateKey checks a collection name or record key.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func validateRecords(collection string, recs []Record) error {
	if err := ValidateKey(collection); err != nil {
		return err
	}
	for _, r := range recs {
		if err := ValidateKey(r.Key); err != nil {
			return err
		}
	}
	return nil
}

func sortRecords(recs []Record) []Record {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs
}

func noopUnsubscribe() {}
