package assetcache

import (
	"sync"

	storagelog "github.com/rebelforge/assetdb/pkg/asset_storage/internal/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Loader decodes asset with the given record ID from its backing storage.
// It returns common.NotFoundError if there is no such record.
type Loader[T any] func(id uint32) (T, error)

// Metrics is an interface of cache statistics consumer.
type Metrics interface {
	AddCacheHit(kind string)
	AddCacheMiss(kind string)
	AddCacheEviction(kind string)
	AddCacheEntries(kind string, delta int)
}

type noopMetrics struct{}

func (noopMetrics) AddCacheHit(string)          {}
func (noopMetrics) AddCacheMiss(string)         {}
func (noopMetrics) AddCacheEviction(string)     {}
func (noopMetrics) AddCacheEntries(string, int) {}

// Cache de-duplicates decoded assets of a single kind by record ID.
//
// Cache never owns values: an entry lives exactly as long as at least one
// Handle to it is not released, and the entry is evicted synchronously by
// the last Release. A subsequent Get of the same ID invokes the Loader again.
//
// Cache is safe for concurrent use. Two concurrent misses of the same ID may
// both invoke the Loader; the second result is discarded and both callers
// share the first entry.
type Cache[T any] struct {
	cfg

	kind string
	load Loader[T]

	mtx     sync.Mutex
	entries map[uint32]*entry[T]
}

type entry[T any] struct {
	c  *Cache[T]
	id uint32
	v  T

	// protected by c.mtx
	refs int
}

// Option represents Cache's constructor option.
type Option func(*cfg)

type cfg struct {
	log     *zap.Logger
	metrics Metrics
}

func initConfig(c *cfg) {
	*c = cfg{
		log:     zap.L(),
		metrics: noopMetrics{},
	}
}

// WithLogger returns option to specify Cache's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithMetrics returns option to specify statistics consumer.
func WithMetrics(m Metrics) Option {
	return func(c *cfg) {
		c.metrics = m
	}
}

// New creates cache of the named asset kind backed by load.
func New[T any](kind string, load Loader[T], opts ...Option) *Cache[T] {
	c := &Cache[T]{
		kind:    kind,
		load:    load,
		entries: make(map[uint32]*entry[T]),
	}
	initConfig(&c.cfg)

	for i := range opts {
		opts[i](&c.cfg)
	}

	c.log = c.log.With(storagelog.KindField(kind))

	return c
}

// Kind returns asset kind name the cache serves.
func (c *Cache[T]) Kind() string {
	return c.kind
}

// Get returns handle to the asset with the given ID. The loader is called
// only if no handle to the asset is alive. Loader errors are forwarded and
// leave no entry behind.
//
// Returned handle MUST be released once the caller no longer needs the asset.
func (c *Cache[T]) Get(id uint32) (*Handle[T], error) {
	c.mtx.Lock()
	if e, ok := c.entries[id]; ok {
		e.refs++
		c.mtx.Unlock()

		c.metrics.AddCacheHit(c.kind)

		return newHandle(e), nil
	}
	c.mtx.Unlock()

	c.metrics.AddCacheMiss(c.kind)

	// the lock is not held here so that loaders may request other assets
	// from the same cache
	v, err := c.load(id)
	if err != nil {
		return nil, err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if e, ok := c.entries[id]; ok {
		c.log.Error("logic error: asset inserted into cache twice, keeping the first one",
			storagelog.IDField(id))

		e.refs++

		return newHandle(e), nil
	}

	e := &entry[T]{c: c, id: id, v: v, refs: 1}
	c.entries[id] = e
	c.metrics.AddCacheEntries(c.kind, 1)

	storagelog.Write(c.log,
		storagelog.OpField("cache insert"),
		storagelog.IDField(id),
	)

	return newHandle(e), nil
}

// Len returns number of alive entries.
func (c *Cache[T]) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return len(c.entries)
}

// Contains checks whether an alive entry with the given ID exists. It does
// not take ownership.
func (c *Cache[T]) Contains(id uint32) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	_, ok := c.entries[id]
	return ok
}

func (c *Cache[T]) release(e *entry[T]) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	e.refs--
	if e.refs > 0 {
		return
	}

	if cur, ok := c.entries[e.id]; ok && cur == e {
		delete(c.entries, e.id)
		c.metrics.AddCacheEviction(c.kind)
		c.metrics.AddCacheEntries(c.kind, -1)

		storagelog.Write(c.log,
			storagelog.OpField("cache evict"),
			storagelog.IDField(e.id),
		)
	}
}

// Handle is a single ownership of a cached asset.
type Handle[T any] struct {
	e        *entry[T]
	released atomic.Bool
}

func newHandle[T any](e *entry[T]) *Handle[T] {
	return &Handle[T]{e: e}
}

// Value returns the asset. It stays valid after Release, but the cache no
// longer tracks it once all handles are released.
func (h *Handle[T]) Value() T {
	return h.e.v
}

// ID returns record ID of the asset.
func (h *Handle[T]) ID() uint32 {
	return h.e.id
}

// Clone returns new independent ownership of the same asset. Clone of a
// released handle panics.
func (h *Handle[T]) Clone() *Handle[T] {
	if h.released.Load() {
		panic("clone of released asset handle")
	}

	c := h.e.c

	c.mtx.Lock()
	h.e.refs++
	c.mtx.Unlock()

	return newHandle(h.e)
}

// Release drops the ownership. Releasing the last handle of an asset evicts
// it from the cache before Release returns. Repeated calls are no-op.
func (h *Handle[T]) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}

	h.e.c.release(h.e)
}
