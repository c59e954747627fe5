// Package asset describes kinds of assets stored in typed containers and the
// references between them.
package asset

import (
	"fmt"
	"io"

	"github.com/rebelforge/assetdb/pkg/asset_storage/assetcache"
	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
)

// Decoder decodes asset from the record payload. Payload is already
// decompressed, and r reports common.ErrIntegrity instead of io.EOF if the
// compressed envelope turns out to be broken.
type Decoder[T any] func(r io.Reader, e container.DirectoryEntry) (T, error)

// Cache is a type-erased view of assetcache.Cache.
type Cache interface {
	Kind() string
	Len() int
	Contains(id uint32) bool
}

// Descriptor is a type-erased asset kind. It allows to handle a set of
// heterogeneous kinds uniformly.
type Descriptor interface {
	// Name returns unique kind name.
	Name() string
	// Extension returns file extension of the kind's containers including
	// the leading dot.
	Extension() string
	// Tag returns type tag of the kind's asset records.
	Tag() container.Tag
	// NewCache returns cache of the kind's assets loaded from c. Concrete type
	// of the result is *assetcache.Cache[T] for Kind[T].
	NewCache(c *container.Container, opts ...assetcache.Option) Cache
}

// Kind is a category of decodable assets stored in containers with the same
// extension.
type Kind[T any] struct {
	name   string
	ext    string
	tag    container.Tag
	decode Decoder[T]
}

// NewKind constructs Kind of the given name whose assets are records of the
// given type in containers with the given extension.
func NewKind[T any](name, ext string, tag container.Tag, decode Decoder[T]) *Kind[T] {
	return &Kind[T]{
		name:   name,
		ext:    ext,
		tag:    tag,
		decode: decode,
	}
}

func (k *Kind[T]) Name() string { return k.name }

func (k *Kind[T]) Extension() string { return k.ext }

func (k *Kind[T]) Tag() container.Tag { return k.tag }

func (k *Kind[T]) String() string { return k.name }

// Load decodes asset with the given record ID from c. Returns
// common.NotFoundError if c has no such record.
func (k *Kind[T]) Load(c *container.Container, id uint32) (T, error) {
	var zero T

	e, ok := c.FindRecord(k.tag, id, 0)
	if !ok {
		return zero, &common.NotFoundError{Kind: k.name, ID: id}
	}

	s, err := c.StreamFor(e, true)
	if err != nil {
		return zero, fmt.Errorf("%s 0x%x: %w", k.name, id, err)
	}
	defer s.Close()

	v, err := k.decode(s, e)
	if err != nil {
		return zero, fmt.Errorf("decode %s 0x%x: %w", k.name, id, err)
	}

	return v, nil
}

// NewCache implements Descriptor.
func (k *Kind[T]) NewCache(c *container.Container, opts ...assetcache.Option) Cache {
	return k.Cache(c, opts...)
}

// Cache returns typed cache of the kind's assets loaded from c.
func (k *Kind[T]) Cache(c *container.Container, opts ...assetcache.Option) *assetcache.Cache[T] {
	return assetcache.New(k.name, func(id uint32) (T, error) {
		return k.Load(c, id)
	}, opts...)
}
