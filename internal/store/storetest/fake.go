// Package storetest provides an in-memory store.Store for service tests.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// FakeStore keeps collections in memory and pushes every change to its
// subscribers synchronously. Set an XxxErr field to make that operation fail
// with a store.UnavailableError.
type FakeStore struct {
	mu           sync.Mutex
	trace        []string
	data         map[string]map[string][]byte
	listeners    map[string]map[int]store.Listener
	nextListener int

	GetErr  error
	PutErr  error
	SetErr  error
	DelErr  error
	InitErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		data:      map[string]map[string][]byte{},
		listeners: map[string]map[int]store.Listener{},
	}
}

func (f *FakeStore) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace lists the operations called, in order.
func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStore) Backend() string { return "fake" }

func (f *FakeStore) fail(op string, err error) error {
	return &store.UnavailableError{Backend: "fake", Operation: op, Err: err}
}

func (f *FakeStore) Get(_ context.Context, collection string) ([]store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Get:" + collection)
	if f.GetErr != nil {
		return nil, f.fail("get", f.GetErr)
	}
	return f.snapshot(collection), nil
}

func (f *FakeStore) Put(_ context.Context, collection string, rec store.Record) error {
	f.mu.Lock()
	f.record("Put:" + collection + "/" + rec.Key)
	if f.PutErr != nil {
		f.mu.Unlock()
		return f.fail("put", f.PutErr)
	}
	if err := store.ValidateKey(rec.Key); err != nil {
		f.mu.Unlock()
		return err
	}
	f.coll(collection)[rec.Key] = append([]byte(nil), rec.Value...)
	f.mu.Unlock()
	f.notify(collection)
	return nil
}

func (f *FakeStore) Delete(_ context.Context, collection, key string) error {
	f.mu.Lock()
	f.record("Delete:" + collection + "/" + key)
	if f.DelErr != nil {
		f.mu.Unlock()
		return f.fail("delete", f.DelErr)
	}
	delete(f.coll(collection), key)
	f.mu.Unlock()
	f.notify(collection)
	return nil
}

func (f *FakeStore) Set(_ context.Context, collection string, recs []store.Record) error {
	f.mu.Lock()
	f.record("Set:" + collection)
	if f.SetErr != nil {
		f.mu.Unlock()
		return f.fail("set", f.SetErr)
	}
	c := map[string][]byte{}
	for _, r := range recs {
		c[r.Key] = append([]byte(nil), r.Value...)
	}
	f.data[collection] = c
	f.mu.Unlock()
	f.notify(collection)
	return nil
}

func (f *FakeStore) InitializeIfEmpty(_ context.Context, collection string, recs []store.Record) (bool, error) {
	f.mu.Lock()
	f.record("InitializeIfEmpty:" + collection)
	if f.InitErr != nil {
		f.mu.Unlock()
		return false, f.fail("initialize", f.InitErr)
	}
	c := f.coll(collection)
	if len(c) > 0 {
		f.mu.Unlock()
		return false, nil
	}
	for _, r := range recs {
		c[r.Key] = append([]byte(nil), r.Value...)
	}
	f.mu.Unlock()
	f.notify(collection)
	return true, nil
}

func (f *FakeStore) Subscribe(_ context.Context, collection string, fn store.Listener) (store.Unsubscribe, error) {
	f.mu.Lock()
	f.record("Subscribe:" + collection)
	if f.listeners[collection] == nil {
		f.listeners[collection] = map[int]store.Listener{}
	}
	id := f.nextListener
	f.nextListener++
	f.listeners[collection][id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners[collection], id)
			f.mu.Unlock()
		})
	}, nil
}

func (f *FakeStore) Close() error { return nil }

// PutRemote writes a record as another instance would and notifies
// subscribers.
func (f *FakeStore) PutRemote(collection string, rec store.Record) {
	f.mu.Lock()
	f.coll(collection)[rec.Key] = append([]byte(nil), rec.Value...)
	f.mu.Unlock()
	f.notify(collection)
}

// Len returns the number of records in a collection.
func (f *FakeStore) Len(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data[collection])
}

func (f *FakeStore) coll(name string) map[string][]byte {
	c, ok := f.data[name]
	if !ok {
		c = map[string][]byte{}
		f.data[name] = c
	}
	return c
}

func (f *FakeStore) snapshot(collection string) []store.Record {
	c := f.data[collection]
	out := make([]store.Record, 0, len(c))
	for k, v := range c {
		out = append(out, store.Record{Key: k, Value: append([]byte(nil), v...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (f *FakeStore) notify(collection string) {
	f.mu.Lock()
	recs := f.snapshot(collection)
	fns := make([]store.Listener, 0, len(f.listeners[collection]))
	for _, fn := range f.listeners[collection] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(recs)
	}
}

var _ store.Store = (*FakeStore)(nil)
