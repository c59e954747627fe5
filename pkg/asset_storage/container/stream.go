package container

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
)

// Stream is a byte cursor over a single record payload.
//
// When the payload is read through a decompressor, reaching the end of the
// stream checks the envelope: the codec must have consumed exactly the
// declared packed length and produced exactly the declared raw length.
// Violations are returned from Read instead of io.EOF and match
// common.ErrIntegrity.
type Stream struct {
	entry DirectoryEntry

	r      io.Reader
	closer io.Closer

	// called once on io.EOF with the number of produced bytes
	verify func(n int64) error

	n   int64
	err error
}

// StreamFor returns cursor over the record payload. If decompress is set and
// the record is packed, the cursor yields decompressed bytes; otherwise it
// yields exactly e.DataSize raw bytes.
func (c *Container) StreamFor(e DirectoryEntry, decompress bool) (*Stream, error) {
	if int(e.Index) >= len(c.dir) || c.dir[e.Index] != e {
		return nil, fmt.Errorf("record #%d does not belong to container %s", e.Index, c.path)
	}

	off := int64(e.DataOffset)

	if !decompress || !e.Compressed() {
		return &Stream{
			entry: e,
			r:     io.NewSectionReader(c.f, off, int64(e.DataSize)),
		}, nil
	}

	hdr := make([]byte, compression.HeaderLength)
	if _, err := c.f.ReadAt(hdr, off); err != nil {
		return nil, fmt.Errorf("read compression envelope of record #%d: %w", e.Index, err)
	}

	rawSize, packedSize := compression.ParseHeader(hdr)
	if uint64(packedSize)+compression.HeaderLength > uint64(e.DataSize) {
		return nil, common.Formatf("record #%d declares %d packed bytes in %d-byte payload",
			e.Index, packedSize, e.DataSize)
	}

	packedStart := off + compression.HeaderLength
	section := io.NewSectionReader(c.f, packedStart, int64(packedSize))

	switch e.Codec() {
	case compression.CodecDeflate:
		// flate decoder never over-reads from io.ByteReader, so position of the
		// section minus buffered bytes is exactly what the decoder consumed
		br := bufio.NewReader(section)
		fr := c.compression.NewDeflateReader(br)

		return &Stream{
			entry:  e,
			r:      fr,
			closer: fr,
			verify: func(n int64) error {
				pos, err := section.Seek(0, io.SeekCurrent)
				if err != nil {
					return err
				}

				consumed := pos - int64(br.Buffered())
				if consumed != int64(packedSize) {
					return common.Integrityf("record #%d: compressed stream ends at %d, declared end %d",
						e.Index, packedStart+consumed, packedStart+int64(packedSize))
				}

				return checkRawSize(e, n, rawSize)
			},
		}, nil
	case compression.CodecZstd:
		packed := make([]byte, packedSize)
		if _, err := io.ReadFull(section, packed); err != nil {
			return nil, fmt.Errorf("read packed payload of record #%d: %w", e.Index, err)
		}

		data, err := c.compression.DecompressZstd(packed, rawSize)
		if err != nil {
			return nil, fmt.Errorf("%w: record #%d: %w", common.ErrIntegrity, e.Index, err)
		}

		if err = checkRawSize(e, int64(len(data)), rawSize); err != nil {
			return nil, err
		}

		return &Stream{
			entry: e,
			r:     bytes.NewReader(data),
		}, nil
	default:
		return nil, common.Formatf("record #%d: unsupported codec %s", e.Index, e.Codec())
	}
}

func checkRawSize(e DirectoryEntry, n int64, rawSize uint32) error {
	if n != int64(rawSize) {
		return common.Integrityf("record #%d: decompressed %d bytes, declared %d", e.Index, n, rawSize)
	}

	return nil
}

// Entry returns directory entry the stream reads.
func (s *Stream) Entry() DirectoryEntry {
	return s.entry
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	n, err := s.r.Read(p)
	s.n += int64(n)

	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if s.verify != nil {
			if verr := s.verify(s.n); verr != nil {
				err = verr
			}
		}
		s.err = err
	default:
		if s.verify != nil {
			err = fmt.Errorf("%w: record #%d: %w", common.ErrIntegrity, s.entry.Index, err)
		}
		s.err = err
	}

	return n, err
}

// Close releases decoder resources. It does not verify the envelope.
func (s *Stream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}

	return nil
}
