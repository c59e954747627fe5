package database

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rebelforge/assetdb/pkg/asset_storage/asset"
	"github.com/rebelforge/assetdb/pkg/asset_storage/assetcache"
	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	storagelog "github.com/rebelforge/assetdb/pkg/asset_storage/internal/log"
	"github.com/rebelforge/assetdb/pkg/util/pathutil"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultMaxDepth is a default limit of dependency chain length.
const DefaultMaxDepth = 16

// Metrics is an interface of Manager statistics consumer.
type Metrics interface {
	assetcache.Metrics

	AddDatabaseLoad(success bool)
	AddDatabaseLoadDuration(d time.Duration)
	SetDatabases(n int)
}

type noopMetrics struct{}

func (noopMetrics) AddCacheHit(string)                    {}
func (noopMetrics) AddCacheMiss(string)                   {}
func (noopMetrics) AddCacheEviction(string)               {}
func (noopMetrics) AddCacheEntries(string, int)           {}
func (noopMetrics) AddDatabaseLoad(bool)                  {}
func (noopMetrics) AddDatabaseLoadDuration(time.Duration) {}
func (noopMetrics) SetDatabases(int)                      {}

// Manager is a registry of loaded databases keyed by normalized declaration
// path. It loads databases together with all their dependencies, so every
// file is parsed at most once.
type Manager struct {
	cfg

	ownCompression bool

	// serializes check-register-load sequences
	loadMtx sync.Mutex

	regMtx   sync.RWMutex
	registry map[string]*Database
}

// Option represents Manager's constructor option.
type Option func(*cfg)

type cfg struct {
	fs          afero.Fs
	log         *zap.Logger
	maxDepth    int
	kinds       []asset.Descriptor
	resolver    *pathutil.Resolver
	metrics     Metrics
	compression *compression.Config
}

func initConfig(c *cfg) {
	*c = cfg{
		fs:       afero.NewOsFs(),
		log:      zap.L(),
		maxDepth: DefaultMaxDepth,
		kinds:    asset.BuiltinKinds(),
		metrics:  noopMetrics{},
	}
}

// WithFS returns option to specify file system databases are read from.
// Defaults to the OS file system.
func WithFS(fs afero.Fs) Option {
	return func(c *cfg) {
		c.fs = fs
	}
}

// WithLogger returns option to specify Manager's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithMaxDepth returns option to limit length of dependency chains.
func WithMaxDepth(n int) Option {
	return func(c *cfg) {
		c.maxDepth = n
	}
}

// WithKinds returns option to specify asset kinds databases are checked for.
// Defaults to asset.BuiltinKinds.
func WithKinds(kinds ...asset.Descriptor) Option {
	return func(c *cfg) {
		c.kinds = kinds
	}
}

// WithResolver returns option to specify path resolver. It must work over
// the same file system as passed to WithFS.
func WithResolver(r *pathutil.Resolver) Option {
	return func(c *cfg) {
		c.resolver = r
	}
}

// WithMetrics returns option to specify statistics consumer.
func WithMetrics(m Metrics) Option {
	return func(c *cfg) {
		c.metrics = m
	}
}

// WithCompressor returns option to specify compression config shared by
// all opened containers. Without it Manager creates and owns one.
func WithCompressor(cc *compression.Config) Option {
	return func(c *cfg) {
		c.compression = cc
	}
}

// NewManager creates empty Manager.
//
// Panics if the asset kinds are not named uniquely.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		registry: make(map[string]*Database),
	}
	initConfig(&m.cfg)

	for i := range opts {
		opts[i](&m.cfg)
	}

	names := make(map[string]struct{}, len(m.kinds))
	for _, k := range m.kinds {
		if _, ok := names[k.Name()]; ok {
			panic(fmt.Sprintf("database manager: duplicated asset kind %s", k.Name()))
		}
		names[k.Name()] = struct{}{}
	}

	if m.resolver == nil {
		m.resolver = pathutil.NewResolver(m.fs)
	}

	if m.compression == nil {
		m.compression = new(compression.Config)
		if err := m.compression.Init(); err != nil {
			return nil, fmt.Errorf("init compression: %w", err)
		}
		m.ownCompression = true
	}

	m.log = m.log.With(zap.String("component", "database manager"))

	return m, nil
}

// session tracks databases registered by a single top-level Load.
type session struct {
	registered []*Database
}

// Load loads database declared by the file at path with all its
// dependencies. Loading of an already loaded path returns the registered
// instance without reading anything.
//
// If Load fails, every database registered by it is unregistered and
// closed. Dependency chains longer than the configured limit fail with
// common.DepthExceededError.
func (m *Manager) Load(path string) (*Database, error) {
	m.loadMtx.Lock()
	defer m.loadMtx.Unlock()

	// files may have been added or renamed since the previous load
	m.resolver.Purge()

	var (
		s     session
		start = time.Now()
	)

	db, err := m.load(&s, path, 0)

	if len(s.registered) > 0 {
		m.metrics.AddDatabaseLoadDuration(time.Since(start))
		m.metrics.AddDatabaseLoad(err == nil)
	}

	if err != nil {
		m.rollback(&s)
		return nil, err
	}

	return db, nil
}

func (m *Manager) load(s *session, path string, depth int) (*Database, error) {
	if depth > m.maxDepth {
		return nil, &common.DepthExceededError{Path: path, Depth: depth, Max: m.maxDepth}
	}

	key, err := m.normalize(path)
	if err != nil {
		return nil, err
	}

	m.regMtx.RLock()
	db, ok := m.registry[key]
	loaded := ok && db.loaded
	m.regMtx.RUnlock()

	if ok {
		if !loaded {
			m.log.Debug("dependency cycle, using partially loaded database",
				storagelog.PathField(key),
				storagelog.DepthField(depth),
			)
		}

		return db, nil
	}

	db = newDatabase(key, strings.TrimSuffix(key, filepath.Ext(key)))

	m.regMtx.Lock()
	m.registry[key] = db
	m.regMtx.Unlock()

	s.registered = append(s.registered, db)

	err = m.loadDeclarationAndDependencies(s, db, depth)
	if err != nil {
		return nil, fmt.Errorf("load database %s: %w", key, err)
	}

	m.regMtx.Lock()
	db.loaded = true
	n := len(m.registry)
	m.regMtx.Unlock()

	m.metrics.SetDatabases(n)

	storagelog.Write(m.log,
		storagelog.OpField("load database"),
		storagelog.PathField(key),
		storagelog.DepthField(depth),
		zap.Strings("kinds", db.Kinds()),
	)

	return db, nil
}

func (m *Manager) loadDeclarationAndDependencies(s *session, db *Database, depth int) error {
	f, err := m.fs.Open(db.path)
	if err != nil {
		return fmt.Errorf("open declaration: %w", err)
	}

	decl, err := ParseDeclaration(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("parse declaration: %w", err)
	}

	db.version = decl.Version

	dir := filepath.Dir(db.path)

	for _, d := range decl.Dependencies {
		p, err := m.normalize(m.resolver.Resolve(d.Path, dir))
		if err != nil {
			return fmt.Errorf("dependency %d: %w", d.Index, err)
		}

		if p == db.path {
			m.log.Warn("database depends on itself, skipping",
				storagelog.PathField(db.path),
				zap.Uint32("index", d.Index),
			)

			continue
		}

		dep, err := m.load(s, p, depth+1)
		if err != nil {
			return fmt.Errorf("dependency %d (%s): %w", d.Index, d.Path, err)
		}

		if prev, ok := db.deps[d.Index]; ok {
			m.log.Debug("dependency index declared twice, last one wins",
				storagelog.PathField(db.path),
				zap.Uint32("index", d.Index),
				zap.String("previous", prev.path),
				zap.String("new", dep.path),
			)
		}

		db.deps[d.Index] = dep
	}

	log := m.log.With(storagelog.PathField(db.path))

	for _, k := range m.kinds {
		p := m.resolver.Normalize(db.base + k.Extension())
		if !m.resolver.Exists(p) {
			continue
		}

		c, err := container.Open(m.fs, p,
			container.WithLogger(log),
			container.WithCompressor(m.compression),
		)
		if err != nil {
			return fmt.Errorf("%s container: %w", k.Name(), err)
		}

		db.containers[k.Name()] = c
		db.caches[k.Name()] = k.NewCache(c,
			assetcache.WithLogger(log),
			assetcache.WithMetrics(m.metrics),
		)
	}

	return nil
}

func (m *Manager) normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	return m.resolver.Normalize(abs), nil
}

func (m *Manager) rollback(s *session) {
	m.regMtx.Lock()
	for _, db := range s.registered {
		delete(m.registry, db.path)
	}
	n := len(m.registry)
	m.regMtx.Unlock()

	m.metrics.SetDatabases(n)

	for _, db := range s.registered {
		if err := db.Close(); err != nil {
			m.log.Warn("failed to close database after failed load",
				storagelog.PathField(db.path),
				zap.Error(err),
			)
		}
	}
}

// Get returns loaded database by path. Returns common.NotFoundError if
// there is no such database.
func (m *Manager) Get(path string) (*Database, error) {
	key, err := m.normalize(path)
	if err != nil {
		return nil, err
	}

	m.regMtx.RLock()
	db, ok := m.registry[key]
	ok = ok && db.loaded
	m.regMtx.RUnlock()

	if !ok {
		return nil, &common.NotFoundError{Kind: "database", Path: key}
	}

	return db, nil
}

// Databases returns all loaded databases sorted by path.
func (m *Manager) Databases() []*Database {
	m.regMtx.RLock()
	defer m.regMtx.RUnlock()

	res := make([]*Database, 0, len(m.registry))
	for _, key := range slices.Sorted(maps.Keys(m.registry)) {
		if db := m.registry[key]; db.loaded {
			res = append(res, db)
		}
	}

	return res
}

// Close closes all databases and empties the registry.
func (m *Manager) Close() error {
	m.loadMtx.Lock()
	defer m.loadMtx.Unlock()

	m.regMtx.Lock()
	dbs := m.registry
	m.registry = make(map[string]*Database)
	m.regMtx.Unlock()

	m.metrics.SetDatabases(0)

	var err error

	for _, db := range dbs {
		err = multierr.Append(err, db.Close())
	}

	if m.ownCompression {
		err = multierr.Append(err, m.compression.Close())
		m.ownCompression = false
	}

	return err
}
