package container

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
)

// Layout
//
// header:    magic | version | flags | directory_offset | record_count
// payloads:  record | record | ...
// directory: entry | entry | ... (record_count entries at directory_offset)
//
// All integers are little-endian.

const (
	// HeaderSize is a size of the fixed container header.
	HeaderSize = 16
	// EntrySize is a size of a single directory entry.
	EntrySize = 28
	// MaxVersion is the newest container format version this package reads.
	MaxVersion = 1
)

// Magic identifies container files.
var Magic = [4]byte{'A', 'C', 'T', 'R'}

// Record flags.
const (
	// FlagDeflate marks a payload packed into a DEFLATE envelope.
	FlagDeflate uint32 = 1 << iota
	// FlagZstd marks a payload packed into a zstd envelope.
	FlagZstd

	knownFlags = FlagDeflate | FlagZstd
)

// Tag is a four-character record type tag.
type Tag uint32

// NewTag builds a Tag from four ASCII characters. Shorter strings are
// padded with spaces, longer ones are truncated.
func NewTag(s string) Tag {
	b := [4]byte{' ', ' ', ' ', ' '}
	copy(b[:], s)
	return Tag(binary.LittleEndian.Uint32(b[:]))
}

// ParseTag parses either four-character form or 0x-prefixed hex form.
func ParseTag(s string) (Tag, error) {
	if len(s) > 2 && s[:2] == "0x" {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid record type %q: %w", s, err)
		}
		return Tag(v), nil
	}

	if len(s) == 0 || len(s) > 4 {
		return 0, fmt.Errorf("invalid record type %q: must be 1 to 4 characters", s)
	}

	return NewTag(s), nil
}

// String returns four-character form of the tag if it is printable and
// hex form otherwise.
func (t Tag) String() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))

	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(t))
		}
	}

	return string(b[:])
}

// Header is a fixed container header.
type Header struct {
	Version     uint16
	Flags       uint16
	DirOffset   uint32
	RecordCount uint32
}

func (h Header) encode(b []byte) {
	copy(b, Magic[:])
	binary.LittleEndian.PutUint16(b[4:], h.Version)
	binary.LittleEndian.PutUint16(b[6:], h.Flags)
	binary.LittleEndian.PutUint32(b[8:], h.DirOffset)
	binary.LittleEndian.PutUint32(b[12:], h.RecordCount)
}

func decodeHeader(b []byte) (Header, error) {
	if [4]byte(b[:4]) != Magic {
		return Header{}, common.Formatf("invalid magic %q", b[:4])
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(b[4:]),
		Flags:       binary.LittleEndian.Uint16(b[6:]),
		DirOffset:   binary.LittleEndian.Uint32(b[8:]),
		RecordCount: binary.LittleEndian.Uint32(b[12:]),
	}

	if h.Version == 0 || h.Version > MaxVersion {
		return Header{}, common.Formatf("unsupported container version %d (max %d)", h.Version, MaxVersion)
	}

	if h.Flags != 0 {
		return Header{}, common.Formatf("unknown header flags 0x%x", h.Flags)
	}

	return h, nil
}

// DirectoryEntry describes a single record of the container.
type DirectoryEntry struct {
	Index      uint32
	Type       Tag
	Flags      uint32
	RecordID   uint32
	GroupID    uint32
	DataOffset uint32
	DataSize   uint32
}

// Compressed checks whether the record payload is packed into
// a compression envelope.
func (e DirectoryEntry) Compressed() bool {
	return e.Flags&knownFlags != 0
}

// Codec returns compression codec of the record payload.
func (e DirectoryEntry) Codec() compression.Codec {
	switch {
	case e.Flags&FlagDeflate != 0:
		return compression.CodecDeflate
	case e.Flags&FlagZstd != 0:
		return compression.CodecZstd
	default:
		return compression.CodecNone
	}
}

func (e DirectoryEntry) end() uint64 {
	return uint64(e.DataOffset) + uint64(e.DataSize)
}

func (e DirectoryEntry) encode(b []byte) {
	binary.LittleEndian.PutUint32(b, e.Index)
	binary.LittleEndian.PutUint32(b[4:], uint32(e.Type))
	binary.LittleEndian.PutUint32(b[8:], e.Flags)
	binary.LittleEndian.PutUint32(b[12:], e.RecordID)
	binary.LittleEndian.PutUint32(b[16:], e.GroupID)
	binary.LittleEndian.PutUint32(b[20:], e.DataOffset)
	binary.LittleEndian.PutUint32(b[24:], e.DataSize)
}

func decodeEntry(b []byte) DirectoryEntry {
	return DirectoryEntry{
		Index:      binary.LittleEndian.Uint32(b),
		Type:       Tag(binary.LittleEndian.Uint32(b[4:])),
		Flags:      binary.LittleEndian.Uint32(b[8:]),
		RecordID:   binary.LittleEndian.Uint32(b[12:]),
		GroupID:    binary.LittleEndian.Uint32(b[16:]),
		DataOffset: binary.LittleEndian.Uint32(b[20:]),
		DataSize:   binary.LittleEndian.Uint32(b[24:]),
	}
}
