package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
)

// NATSOptions configures the JetStream KV backend.
type NATSOptions struct {
	URL      string
	Bucket   string
	NKeySeed string
	Timeout  time.Duration
}

// KVStore keeps each record under "<collection>.<key>" in one KV bucket.
type KVStore struct {
	kv      jetstream.KeyValue
	nc      *nats.Conn
	logger  *slog.Logger
	metrics metrics.StoreMetrics
}

// NewKVStore wraps an existing bucket. The caller keeps ownership of the
// connection.
func NewKVStore(kv jetstream.KeyValue, logger *slog.Logger, m metrics.StoreMetrics) *KVStore {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &KVStore{kv: kv, logger: logger, metrics: m}
}

// OpenNATS connects, creates the bucket if needed and returns a store that
// owns the connection.
func OpenNATS(ctx context.Context, opts NATSOptions, logger *slog.Logger, m metrics.StoreMetrics) (*KVStore, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	connOpts := []nats.Option{
		nats.Name("tripscore"),
		nats.Timeout(opts.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", attr.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", attr.String("url", nc.ConnectedUrl()))
		}),
	}
	if opts.NKeySeed != "" {
		kp, err := nkeys.FromSeed([]byte(opts.NKeySeed))
		if err != nil {
			return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
		}
		pub, err := kp.PublicKey()
		if err != nil {
			return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
		}
		connOpts = append(connOpts, nats.Nkey(pub, kp.Sign))
	}

	nc, err := nats.Connect(opts.URL, connOpts...)
	if err != nil {
		return nil, unavailable(BackendNATS, "connect", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, unavailable(BackendNATS, "jetstream", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      opts.Bucket,
		Description: "tripscore round scores, special shots and roster handicaps",
		History:     5,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, unavailable(BackendNATS, "create bucket", err)
	}

	s := NewKVStore(kv, logger, m)
	s.nc = nc
	logger.InfoContext(ctx, "NATS KV store ready", attr.String("bucket", opts.Bucket))
	return s, nil
}

func (s *KVStore) Backend() string { return BackendNATS }

func fullKey(collection, key string) string { return collection + "." + key }

func (s *KVStore) Get(ctx context.Context, collection string) ([]Record, error) {
	recs, err := s.get(ctx, collection)
	s.metrics.RecordStoreOperation(BackendNATS, collection, "get", err)
	return recs, err
}

func (s *KVStore) get(ctx context.Context, collection string) ([]Record, error) {
	if err := ValidateKey(collection); err != nil {
		return nil, err
	}

	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []Record{}, nil
		}
		return nil, unavailable(BackendNATS, "list keys", err)
	}

	prefix := collection + "."
	recs := make([]Record, 0, len(keys))
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		entry, err := s.kv.Get(ctx, k)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return nil, unavailable(BackendNATS, "get", err)
		}
		recs = append(recs, Record{Key: strings.TrimPrefix(k, prefix), Value: entry.Value()})
	}
	return sortRecords(recs), nil
}

func (s *KVStore) Put(ctx context.Context, collection string, rec Record) error {
	err := s.put(ctx, collection, rec)
	s.metrics.RecordStoreOperation(BackendNATS, collection, "put", err)
	return err
}

func (s *KVStore) put(ctx context.Context, collection string, rec Record) error {
	if err := validateRecords(collection, []Record{rec}); err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, fullKey(collection, rec.Key), rec.Value); err != nil {
		return unavailable(BackendNATS, "put", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, collection, key string) error {
	err := s.delete(ctx, collection, key)
	s.metrics.RecordStoreOperation(BackendNATS, collection, "delete", err)
	return err
}

func (s *KVStore) delete(ctx context.Context, collection, key string) error {
	if err := validateRecords(collection, []Record{{Key: key}}); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, fullKey(collection, key)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return unavailable(BackendNATS, "delete", err)
	}
	return nil
}

// Set writes every record then deletes the keys that are no longer present.
// It is not atomic across keys.
func (s *KVStore) Set(ctx context.Context, collection string, recs []Record) error {
	err := s.set(ctx, collection, recs)
	s.metrics.RecordStoreOperation(BackendNATS, collection, "set", err)
	return err
}

func (s *KVStore) set(ctx context.Context, collection string, recs []Record) error {
	if err := validateRecords(collection, recs); err != nil {
		return err
	}
	existing, err := s.get(ctx, collection)
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		keep[r.Key] = struct{}{}
		if err := s.put(ctx, collection, r); err != nil {
			return err
		}
	}
	for _, r := range existing {
		if _, ok := keep[r.Key]; ok {
			continue
		}
		if err := s.delete(ctx, collection, r.Key); err != nil {
			return err
		}
	}
	return nil
}

// InitializeIfEmpty uses Create per key so concurrent seeders cannot
// overwrite each other.
func (s *KVStore) InitializeIfEmpty(ctx context.Context, collection string, recs []Record) (bool, error) {
	if err := validateRecords(collection, recs); err != nil {
		return false, err
	}
	existing, err := s.get(ctx, collection)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, r := range recs {
		if _, err := s.kv.Create(ctx, fullKey(collection, r.Key), r.Value); err != nil {
			if errors.Is(err, jetstream.ErrKeyExists) {
				continue
			}
			s.metrics.RecordStoreOperation(BackendNATS, collection, "initialize", err)
			return false, unavailable(BackendNATS, "create", err)
		}
	}
	s.metrics.RecordStoreOperation(BackendNATS, collection, "initialize", nil)
	return true, nil
}

// Subscribe watches "<collection>.>" and replays the full collection after
// the initial values and after every later update.
func (s *KVStore) Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error) {
	if err := ValidateKey(collection); err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w, err := s.kv.Watch(watchCtx, collection+".>")
	if err != nil {
		cancel()
		return nil, unavailable(BackendNATS, "watch", err)
	}

	prefix := collection + "."
	go func() {
		state := make(map[string][]byte)
		initialDone := false
		for {
			select {
			case <-watchCtx.Done():
				return
			case entry, ok := <-w.Updates():
				if !ok {
					return
				}
				if entry == nil {
					initialDone = true
					fn(snapshot(state))
					continue
				}
				key := strings.TrimPrefix(entry.Key(), prefix)
				switch entry.Operation() {
				case jetstream.KeyValuePut:
					state[key] = append([]byte(nil), entry.Value()...)
				default:
					delete(state, key)
				}
				if initialDone {
					fn(snapshot(state))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := w.Stop(); err != nil {
				s.logger.Debug("watcher stop", attr.Error(err))
			}
		})
	}, nil
}

func snapshot(state map[string][]byte) []Record {
	recs := make([]Record, 0, len(state))
	for k, v := range state {
		recs = append(recs, Record{Key: k, Value: v})
	}
	return sortRecords(recs)
}

func (s *KVStore) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}

var _ Store = (*KVStore)(nil)
