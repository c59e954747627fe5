package container

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
)

// Record is an input of Builder.
type Record struct {
	Type    Tag
	ID      uint32
	GroupID uint32
	Data    []byte
	Codec   compression.Codec
}

// Builder assembles a container in memory and writes it out. Records keep
// the order they were added in.
type Builder struct {
	compression *compression.Config
	records     []Record
}

var errNoCompressor = errors.New("compressed record requires compression config")

// NewBuilder returns Builder packing compressed records with cc. cc may be
// nil if no record requests compression.
func NewBuilder(cc *compression.Config) *Builder {
	return &Builder{compression: cc}
}

// Add appends record to the container.
func (b *Builder) Add(r Record) {
	b.records = append(b.records, r)
}

// Len returns number of added records.
func (b *Builder) Len() int {
	return len(b.records)
}

// WriteTo writes container to w: header, payloads and the directory at
// the end.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	var (
		entries  = make([]DirectoryEntry, len(b.records))
		payloads = make([][]byte, len(b.records))
		off      = uint64(HeaderSize)
	)

	for i, r := range b.records {
		var (
			data  = r.Data
			flags uint32
			err   error
		)

		switch r.Codec {
		case compression.CodecNone:
		case compression.CodecDeflate, compression.CodecZstd:
			if b.compression == nil {
				return 0, fmt.Errorf("record #%d: %w", i, errNoCompressor)
			}

			data, err = b.compression.Compress(r.Codec, r.Data)
			if err != nil {
				return 0, fmt.Errorf("compress record #%d: %w", i, err)
			}

			flags = FlagDeflate
			if r.Codec == compression.CodecZstd {
				flags = FlagZstd
			}
		default:
			return 0, fmt.Errorf("record #%d: unsupported codec %s", i, r.Codec)
		}

		entries[i] = DirectoryEntry{
			Index:      uint32(i),
			Type:       r.Type,
			Flags:      flags,
			RecordID:   r.ID,
			GroupID:    r.GroupID,
			DataOffset: uint32(off),
			DataSize:   uint32(len(data)),
		}
		payloads[i] = data
		off += uint64(len(data))
	}

	if off+uint64(len(entries))*EntrySize > math.MaxUint32 {
		return 0, fmt.Errorf("container size %d exceeds format limit", off)
	}

	buf := make([]byte, HeaderSize)
	Header{
		Version:     MaxVersion,
		DirOffset:   uint32(off),
		RecordCount: uint32(len(entries)),
	}.encode(buf)

	var total int64

	write := func(p []byte) error {
		n, err := w.Write(p)
		total += int64(n)
		return err
	}

	if err := write(buf); err != nil {
		return total, fmt.Errorf("write header: %w", err)
	}

	for i := range payloads {
		if err := write(payloads[i]); err != nil {
			return total, fmt.Errorf("write payload of record #%d: %w", i, err)
		}
	}

	buf = make([]byte, len(entries)*EntrySize)
	for i := range entries {
		entries[i].encode(buf[i*EntrySize:])
	}

	if err := write(buf); err != nil {
		return total, fmt.Errorf("write directory: %w", err)
	}

	return total, nil
}
