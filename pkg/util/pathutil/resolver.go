// Package pathutil resolves asset paths written by tools that do not care
// about separator style or file name case.
package pathutil

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

const defaultDirCacheSize = 256

// Resolver resolves relative paths and matches them against the file
// system case-insensitively.
//
// Directory listings are cached. A cached listing without a match is read
// again once, so new files are found, while removed or renamed ones stay
// visible to Normalize until Purge.
type Resolver struct {
	fs   afero.Fs
	dirs *lru.Cache[string, []string]
}

// Option is an option of Resolver's constructor.
type Option func(*cfg)

type cfg struct {
	cacheSize int
}

func defaultCfg() *cfg {
	return &cfg{
		cacheSize: defaultDirCacheSize,
	}
}

// WithCacheSize returns an option to specify number of cached directory
// listings.
func WithCacheSize(v int) Option {
	return func(c *cfg) {
		c.cacheSize = v
	}
}

// NewResolver creates Resolver over fs.
//
// Panics if cache size is not positive.
func NewResolver(fs afero.Fs, opts ...Option) *Resolver {
	c := defaultCfg()

	for _, o := range opts {
		o(c)
	}

	dirs, err := lru.New[string, []string](c.cacheSize)
	if err != nil {
		panic(fmt.Errorf("could not create LRU cache with %d size: %w", c.cacheSize, err))
	}

	return &Resolver{
		fs:   fs,
		dirs: dirs,
	}
}

// Resolve returns path of rel relative to baseDir. Backslashes in rel are
// treated as separators. Absolute rel is returned cleaned.
func (r *Resolver) Resolve(rel, baseDir string) string {
	rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))

	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}

	return filepath.Join(baseDir, rel)
}

// Exists checks whether p exists exactly as given.
func (r *Resolver) Exists(p string) bool {
	ok, err := afero.Exists(r.fs, p)
	return err == nil && ok
}

// Normalize returns p with every component replaced by the name of the
// existing directory entry that matches it. Exact match takes precedence
// over case-insensitive one, several case-insensitive matches resolve to
// the lexicographically first name. Components starting from the first one
// that matches nothing are left as is, so the result of Normalize for a
// missing file does not exist either.
func (r *Resolver) Normalize(p string) string {
	p = filepath.Clean(p)

	vol := filepath.VolumeName(p)
	rest := p[len(vol):]

	var cur string
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		cur = vol + string(filepath.Separator)
		rest = rest[1:]
	} else {
		cur = vol
	}

	if rest == "" {
		return p
	}

	parts := strings.Split(rest, string(filepath.Separator))

	for i, part := range parts {
		if part == "." || part == ".." {
			cur = filepath.Join(cur, part)
			continue
		}

		name, ok := r.match(dirOf(cur), part)
		if !ok {
			return filepath.Join(append([]string{cur}, parts[i:]...)...)
		}

		cur = filepath.Join(cur, name)
	}

	return cur
}

func dirOf(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func (r *Resolver) match(dir, name string) (string, bool) {
	names, cached, err := r.list(dir)
	if err != nil {
		return "", false
	}

	if n, ok := pick(names, name); ok || !cached {
		return n, ok
	}

	// listing may predate the file
	r.dirs.Remove(dir)

	names, _, err = r.list(dir)
	if err != nil {
		return "", false
	}

	return pick(names, name)
}

func pick(names []string, name string) (string, bool) {
	var folded string
	for _, n := range names {
		if n == name {
			return n, true
		}

		if folded == "" && strings.EqualFold(n, name) {
			folded = n
		}
	}

	return folded, folded != ""
}

func (r *Resolver) list(dir string) ([]string, bool, error) {
	if names, ok := r.dirs.Get(dir); ok {
		return names, true, nil
	}

	f, err := r.fs.Open(dir)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, false, err
	}

	// deterministic choice among several case-insensitive matches
	slices.Sort(names)

	r.dirs.Add(dir, names)

	return names, false, nil
}

// Purge drops all cached directory listings.
func (r *Resolver) Purge() {
	r.dirs.Purge()
}
