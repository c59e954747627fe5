package database

import (
	"fmt"
	"maps"
	"slices"

	"github.com/rebelforge/assetdb/pkg/asset_storage/asset"
	"github.com/rebelforge/assetdb/pkg/asset_storage/assetcache"
	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	"go.uber.org/multierr"
)

// Database is a single asset pack: a declaration of format version and
// dependencies plus typed containers sharing its base name.
//
// Databases are created by Manager. Once loaded, a Database is immutable
// and safe for concurrent use.
type Database struct {
	path string
	base string

	// protected by Manager.regMtx
	loaded bool

	version uint32
	deps    map[uint32]*Database

	containers map[string]*container.Container
	caches     map[string]asset.Cache
}

func newDatabase(path, base string) *Database {
	return &Database{
		path:       path,
		base:       base,
		deps:       make(map[uint32]*Database),
		containers: make(map[string]*container.Container),
		caches:     make(map[string]asset.Cache),
	}
}

// Path returns normalized path of the declaration file.
func (db *Database) Path() string {
	return db.path
}

// Version returns declared format version.
func (db *Database) Version() uint32 {
	return db.version
}

// Dependency returns database registered at the given index of the
// dependency table.
func (db *Database) Dependency(i uint32) (*Database, bool) {
	dep, ok := db.deps[i]
	return dep, ok
}

// Dependencies returns copy of the dependency table.
func (db *Database) Dependencies() map[uint32]*Database {
	return maps.Clone(db.deps)
}

// HasKind checks whether db has container of the named asset kind.
func (db *Database) HasKind(name string) bool {
	_, ok := db.containers[name]
	return ok
}

// Kinds returns sorted names of the asset kinds db has containers of.
func (db *Database) Kinds() []string {
	return slices.Sorted(maps.Keys(db.containers))
}

// Container returns opened container of the named asset kind.
func (db *Database) Container(name string) (*container.Container, bool) {
	c, ok := db.containers[name]
	return c, ok
}

// Cache returns cache of the named asset kind.
func (db *Database) Cache(name string) (asset.Cache, bool) {
	c, ok := db.caches[name]
	return c, ok
}

// Close closes all containers of db. Handles of already loaded assets stay
// valid.
func (db *Database) Close() error {
	var err error

	for name, c := range db.containers {
		if cErr := c.Close(); cErr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s container: %w", name, cErr))
		}
	}

	return err
}

func (db *Database) String() string {
	return db.path
}

// Get returns handle to the asset of the given kind stored in db itself.
// Returns common.NotFoundError if db has no container of the kind or the
// container has no such record.
func Get[T any](db *Database, k *asset.Kind[T], id uint32) (*assetcache.Handle[T], error) {
	c, ok := db.caches[k.Name()]
	if !ok {
		return nil, fmt.Errorf("database %s has no %s container: %w",
			db.path, k.Name(), &common.NotFoundError{Kind: k.Name(), ID: id})
	}

	tc, ok := c.(*assetcache.Cache[T])
	if !ok {
		// unreachable until two kinds of different types share the name
		return nil, fmt.Errorf("asset kind %s of %s is registered with another type", k.Name(), db.path)
	}

	h, err := tc.Get(id)
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", db.path, err)
	}

	return h, nil
}

// GetByRef resolves ref against db and returns handle to the referenced
// asset. Sentinel references resolve to nil handle and nil error without
// touching the dependency table. Reference to an undeclared dependency
// index results in common.DependencyError.
func GetByRef[T any](db *Database, k *asset.Kind[T], ref asset.Ref) (*assetcache.Handle[T], error) {
	if ref.IsSentinel() {
		return nil, nil
	}

	if ref.Dep == 0 {
		return Get(db, k, ref.ID)
	}

	dep, ok := db.deps[ref.Dep]
	if !ok {
		return nil, &common.DependencyError{Index: ref.Dep, Database: db.path}
	}

	// rewritten ref is local to dep, no further hops
	return Get(dep, k, ref.ID)
}
