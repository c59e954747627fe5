package container

import (
	"cmp"
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
	storagelog "github.com/rebelforge/assetdb/pkg/asset_storage/internal/log"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Container is a read-only view of a single container file: a directory
// of typed records and the payload region they point into.
//
// Container is safe for concurrent reads as long as files of the underlying
// afero.Fs support concurrent ReadAt calls (OS files do, in-memory ones do not).
type Container struct {
	cfg

	path string
	f    afero.File
	size int64

	hdr Header
	dir []DirectoryEntry

	ownCompression bool
}

// Option represents Container's constructor option.
type Option func(*cfg)

type cfg struct {
	log         *zap.Logger
	compression *compression.Config
}

func initConfig(c *cfg) {
	*c = cfg{
		log: zap.L(),
	}
}

// WithLogger returns option to specify Container's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithCompressor returns option to share initialized compression config
// between containers. Without it each Container owns a private one.
func WithCompressor(cc *compression.Config) Option {
	return func(c *cfg) {
		c.compression = cc
	}
}

// Open opens container file located at path and reads its header and
// directory. Any structural defect is reported as common.ErrFormat or
// common.ErrIntegrity.
func Open(fsys afero.Fs, path string, opts ...Option) (*Container, error) {
	c := &Container{path: path}
	initConfig(&c.cfg)

	for i := range opts {
		opts[i](&c.cfg)
	}

	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}

	c.f = f

	err = c.readDirectory()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read container %s: %w", path, err)
	}

	if c.compression == nil {
		c.compression = new(compression.Config)
		if err = c.compression.Init(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("init compression for %s: %w", path, err)
		}
		c.ownCompression = true
	}

	storagelog.Write(c.log,
		storagelog.OpField("open container"),
		storagelog.PathField(path),
		zap.Uint32("records", c.hdr.RecordCount),
	)

	return c, nil
}

func (c *Container) readDirectory() error {
	st, err := c.f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	c.size = st.Size()

	if c.size < HeaderSize {
		return common.Formatf("file of %d bytes is shorter than header", c.size)
	}

	buf := make([]byte, HeaderSize)
	if _, err = c.f.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	c.hdr, err = decodeHeader(buf)
	if err != nil {
		return err
	}

	dirStart := uint64(c.hdr.DirOffset)
	dirEnd := dirStart + uint64(c.hdr.RecordCount)*EntrySize

	if dirStart < HeaderSize || dirEnd > uint64(c.size) {
		return common.Formatf("directory [%d:%d) of %d records is out of file bounds [%d:%d)",
			dirStart, dirEnd, c.hdr.RecordCount, HeaderSize, c.size)
	}

	buf = make([]byte, dirEnd-dirStart)
	if len(buf) > 0 {
		if _, err = c.f.ReadAt(buf, int64(dirStart)); err != nil {
			return fmt.Errorf("read directory: %w", err)
		}
	}

	c.dir = make([]DirectoryEntry, c.hdr.RecordCount)

	for i := range c.dir {
		e := decodeEntry(buf[i*EntrySize:])

		switch {
		case e.Index != uint32(i):
			return common.Formatf("directory entry #%d has index %d", i, e.Index)
		case e.Flags&^knownFlags != 0:
			return common.Formatf("record #%d has unknown flags 0x%x", i, e.Flags)
		case e.Flags&FlagDeflate != 0 && e.Flags&FlagZstd != 0:
			return common.Formatf("record #%d is flagged with several codecs", i)
		case e.DataSize > 0 && (uint64(e.DataOffset) < HeaderSize || e.end() > uint64(c.size)):
			return common.Formatf("record #%d payload [%d:%d) is out of file bounds", i, e.DataOffset, e.end())
		case e.DataSize > 0 && uint64(e.DataOffset) < dirEnd && e.end() > dirStart:
			return common.Formatf("record #%d payload [%d:%d) overlaps directory", i, e.DataOffset, e.end())
		case e.Compressed() && e.DataSize < compression.HeaderLength:
			return common.Formatf("record #%d is too short for compression envelope", i)
		}

		c.dir[i] = e
	}

	return checkOverlaps(c.dir)
}

func checkOverlaps(dir []DirectoryEntry) error {
	sorted := make([]DirectoryEntry, 0, len(dir))
	for i := range dir {
		if dir[i].DataSize > 0 {
			sorted = append(sorted, dir[i])
		}
	}

	slices.SortFunc(sorted, func(a, b DirectoryEntry) int {
		return cmp.Compare(a.DataOffset, b.DataOffset)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].end() > uint64(sorted[i].DataOffset) {
			return common.Integrityf("payloads of records #%d and #%d overlap",
				sorted[i-1].Index, sorted[i].Index)
		}
	}

	return nil
}

// Path returns path the container was opened from.
func (c *Container) Path() string {
	return c.path
}

// Header returns container header.
func (c *Container) Header() Header {
	return c.hdr
}

// Len returns number of records in the directory.
func (c *Container) Len() int {
	return len(c.dir)
}

// Entry returns i-th directory entry. Panics if i is out of range.
func (c *Container) Entry(i int) DirectoryEntry {
	return c.dir[i]
}

// All returns directory entries in their on-disk order. The sequence is
// finite and may be iterated any number of times.
func (c *Container) All() iter.Seq[DirectoryEntry] {
	return func(yield func(DirectoryEntry) bool) {
		for i := range c.dir {
			if !yield(c.dir[i]) {
				return
			}
		}
	}
}

// Iterate passes directory entries to f in their on-disk order. Iteration
// stops at the first error returned by f, which is forwarded.
func (c *Container) Iterate(f func(DirectoryEntry) error) error {
	for e := range c.All() {
		if err := f(e); err != nil {
			return err
		}
	}

	return nil
}

// FindFirst returns the first entry of the given type at directory
// position from or later.
func (c *Container) FindFirst(typ Tag, from int) (DirectoryEntry, bool) {
	for i := max(from, 0); i < len(c.dir); i++ {
		if c.dir[i].Type == typ {
			return c.dir[i], true
		}
	}

	return DirectoryEntry{}, false
}

// FindRecord returns the first entry of the given type and record ID at
// directory position from or later.
func (c *Container) FindRecord(typ Tag, id uint32, from int) (DirectoryEntry, bool) {
	for i := max(from, 0); i < len(c.dir); i++ {
		if c.dir[i].Type == typ && c.dir[i].RecordID == id {
			return c.dir[i], true
		}
	}

	return DirectoryEntry{}, false
}

// ReadRecord reads the whole record payload into memory.
func (c *Container) ReadRecord(e DirectoryEntry, decompress bool) ([]byte, error) {
	s, err := c.StreamFor(e, decompress)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(s)
	return data, multierr.Append(err, s.Close())
}

// Close releases the file and private compression routines.
func (c *Container) Close() error {
	err := c.f.Close()
	if c.ownCompression {
		err = multierr.Append(err, c.compression.Close())
	}

	return err
}
