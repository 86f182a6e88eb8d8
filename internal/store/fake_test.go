package store

import (
	"context"
	"strings"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
)

// ------------------------
// Fake KeyValue
// ------------------------

type FakeKeyValue struct {
	jetstream.KeyValue // Embed to satisfy interface

	mu       sync.Mutex
	data     map[string][]byte
	watchers []*FakeKeyWatcher
	trace    []string

	PutErr  error
	KeysErr error
}

func NewFakeKeyValue() *FakeKeyValue {
	return &FakeKeyValue{
		data:  make(map[string][]byte),
		trace: []string{},
	}
}

func (f *FakeKeyValue) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeKeyValue) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Put")
	if f.PutErr != nil {
		return 0, f.PutErr
	}
	f.data[key] = value
	f.broadcast(&FakeKeyValueEntry{key: key, value: value, op: jetstream.KeyValuePut})
	return uint64(len(f.trace)), nil
}

func (f *FakeKeyValue) Create(ctx context.Context, key string, value []byte, opts ...jetstream.KVCreateOpt) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	if _, ok := f.data[key]; ok {
		return 0, jetstream.ErrKeyExists
	}
	f.data[key] = value
	f.broadcast(&FakeKeyValueEntry{key: key, value: value, op: jetstream.KeyValuePut})
	return uint64(len(f.trace)), nil
}

func (f *FakeKeyValue) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Get")
	val, ok := f.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return &FakeKeyValueEntry{value: val, key: key, op: jetstream.KeyValuePut}, nil
}

func (f *FakeKeyValue) Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Delete")
	delete(f.data, key)
	f.broadcast(&FakeKeyValueEntry{key: key, op: jetstream.KeyValueDelete})
	return nil
}

func (f *FakeKeyValue) Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Keys")
	if f.KeysErr != nil {
		return nil, f.KeysErr
	}
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	return keys, nil
}

// Watch supports the "<prefix>.>" filter used by KVStore.
func (f *FakeKeyValue) Watch(ctx context.Context, keys string, opts ...jetstream.WatchOpt) (jetstream.KeyWatcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Watch")

	w := &FakeKeyWatcher{
		prefix:  strings.TrimSuffix(keys, ">"),
		updates: make(chan jetstream.KeyValueEntry, 64),
	}
	for k, v := range f.data {
		if strings.HasPrefix(k, w.prefix) {
			w.updates <- &FakeKeyValueEntry{key: k, value: v, op: jetstream.KeyValuePut}
		}
	}
	w.updates <- nil
	f.watchers = append(f.watchers, w)
	return w, nil
}

func (f *FakeKeyValue) broadcast(e *FakeKeyValueEntry) {
	for _, w := range f.watchers {
		w.send(e)
	}
}

func (f *FakeKeyValue) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

type FakeKeyValueEntry struct {
	jetstream.KeyValueEntry
	value []byte
	key   string
	op    jetstream.KeyValueOp
}

func (f *FakeKeyValueEntry) Value() []byte                   { return f.value }
func (f *FakeKeyValueEntry) Key() string                     { return f.key }
func (f *FakeKeyValueEntry) Operation() jetstream.KeyValueOp { return f.op }

type FakeKeyWatcher struct {
	mu      sync.Mutex
	prefix  string
	updates chan jetstream.KeyValueEntry
	stopped bool
}

func (w *FakeKeyWatcher) send(e *FakeKeyValueEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || !strings.HasPrefix(e.key, w.prefix) {
		return
	}
	w.updates <- e
}

func (w *FakeKeyWatcher) Updates() <-chan jetstream.KeyValueEntry { return w.updates }

func (w *FakeKeyWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.updates)
	}
	return nil
}

// ------------------------
// Fake StoreMetrics
// ------------------------

type FakeStoreMetrics struct {
	mu       sync.Mutex
	ops      []string
	fallback bool
}

func (m *FakeStoreMetrics) RecordStoreOperation(backend, collection, operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops = append(m.ops, backend+"/"+collection+"/"+operation+"/"+result)
}

func (m *FakeStoreMetrics) SetFallbackActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = active
}

func (m *FakeStoreMetrics) Fallback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallback
}
