// Package cache implements the two-tier dashboard cache: a short-lived
// request memo keyed by a deterministic request signature, and a durable
// snapshot tier behind a pluggable store.
package cache

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// Memo is the request-memo cache tier. Identical parameter sets within the
// TTL never re-trigger aggregation work.
type Memo struct {
	lru *expirable.LRU[string, *entity.Snapshot]
}

// NewMemo creates a request-memo tier with the given capacity and TTL
func NewMemo(size int, ttl time.Duration) *Memo {
	return &Memo{
		lru: expirable.NewLRU[string, *entity.Snapshot](size, nil, ttl),
	}
}

// Get returns the memoized snapshot for a request signature, if fresh
func (m *Memo) Get(key string) (*entity.Snapshot, bool) {
	return m.lru.Get(key)
}

// Set memoizes a snapshot under a request signature
func (m *Memo) Set(key string, snap *entity.Snapshot) {
	m.lru.Add(key, snap)
}

// Purge drops every memoized entry
func (m *Memo) Purge() {
	m.lru.Purge()
}

// Signature derives a deterministic cache key from request parameters. JSON
// encoding of a struct emits fields in declaration order, so equal parameter
// sets always produce equal keys.
func Signature(params interface{}) string {
	b, err := json.Marshal(params)
	if err != nil {
		return "invalid"
	}
	return string(b)
}
