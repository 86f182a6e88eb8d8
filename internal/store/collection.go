package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection is a typed JSON view over one store collection.
type Collection[T any] struct {
	store Store
	name  string
	key   func(T) string
}

// NewCollection binds a collection name and a natural-key function.
func NewCollection[T any](s Store, name string, key func(T) string) *Collection[T] {
	return &Collection[T]{store: s, name: name, key: key}
}

func (c *Collection[T]) Name() string { return c.name }

// All returns every decodable record. Records that fail to decode are
// reported in the joined error alongside the values that did decode.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	recs, err := c.store.Get(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return c.Decode(recs)
}

// Put stores v under its natural key.
func (c *Collection[T]) Put(ctx context.Context, v T) error {
	rec, err := c.encode(v)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.name, rec)
}

func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.name, key)
}

// Replace overwrites the whole collection with vs.
func (c *Collection[T]) Replace(ctx context.Context, vs []T) error {
	recs, err := c.encodeAll(vs)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.name, recs)
}

// InitializeIfEmpty seeds the collection when it holds no records.
func (c *Collection[T]) InitializeIfEmpty(ctx context.Context, vs []T) (bool, error) {
	recs, err := c.encodeAll(vs)
	if err != nil {
		return false, err
	}
	return c.store.InitializeIfEmpty(ctx, c.name, recs)
}

// Subscribe decodes each pushed snapshot before handing it to fn.
func (c *Collection[T]) Subscribe(ctx context.Context, fn func([]T, error)) (Unsubscribe, error) {
	return c.store.Subscribe(ctx, c.name, func(recs []Record) {
		fn(c.Decode(recs))
	})
}

// Decode converts raw records into values.
func (c *Collection[T]) Decode(recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	var errs []error
	for _, r := range recs {
		var v T
		if err := json.Unmarshal(r.Value, &v); err != nil {
			errs = append(errs, fmt.Errorf("decode %s/%s: %w", c.name, r.Key, err))
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}

func (c *Collection[T]) encode(v T) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return Record{Key: c.key(v), Value: data}, nil
}

func (c *Collection[T]) encodeAll(vs []T) ([]Record, error) {
	recs := make([]Record, 0, len(vs))
	for _, v := range vs {
		rec, err := c.encode(v)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
