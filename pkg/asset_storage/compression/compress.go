package compression

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// HeaderLength is a length of the envelope preceding compressed bytes:
// uncompressed size followed by compressed size, both little-endian uint32.
const HeaderLength = 8

// Codec is an algorithm a record payload is packed with.
type Codec uint8

const (
	// CodecNone marks payloads stored as is.
	CodecNone Codec = iota
	// CodecDeflate marks raw DEFLATE (RFC 1951) streams.
	CodecDeflate
	// CodecZstd marks Zstandard frames.
	CodecZstd
)

// String returns the human-readable name of a codec.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecDeflate:
		return "deflate"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCodec parses a codec from its string representation.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "deflate":
		return CodecDeflate, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression codec: %q", name)
	}
}

// Config represents common compression-related configuration.
//
// Zero value is usable after Init: DEFLATE at default level and
// zstd at default speed.
type Config struct {
	DeflateLevel int
	ZstdLevel    int

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Init initializes compression routines.
func (c *Config) Init() error {
	var err error

	if c.DeflateLevel == 0 {
		c.DeflateLevel = flate.DefaultCompression
	}

	encLevel := zstd.SpeedDefault
	if c.ZstdLevel != 0 {
		encLevel = zstd.EncoderLevelFromZstd(c.ZstdLevel)
	}

	c.encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	c.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}

	return nil
}

// PutHeader writes envelope header into b which must be at least
// HeaderLength bytes long.
func PutHeader(b []byte, rawSize, packedSize uint32) {
	binary.LittleEndian.PutUint32(b, rawSize)
	binary.LittleEndian.PutUint32(b[4:], packedSize)
}

// ParseHeader reads envelope header from b which must be at least
// HeaderLength bytes long.
func ParseHeader(b []byte) (rawSize, packedSize uint32) {
	return binary.LittleEndian.Uint32(b), binary.LittleEndian.Uint32(b[4:])
}

// Compress packs data with the given codec and prepends the envelope header.
// For CodecNone data is returned untouched.
func (c *Config) Compress(codec Codec, data []byte) ([]byte, error) {
	var packed []byte

	switch codec {
	case CodecNone:
		return data, nil
	case CodecDeflate:
		var buf bytes.Buffer

		w, err := flate.NewWriter(&buf, c.DeflateLevel)
		if err != nil {
			return nil, fmt.Errorf("create deflate writer: %w", err)
		}
		if _, err = w.Write(data); err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		if err = w.Close(); err != nil {
			return nil, fmt.Errorf("finish deflate stream: %w", err)
		}
		packed = buf.Bytes()
	case CodecZstd:
		packed = c.encoder.EncodeAll(data, make([]byte, 0, c.encoder.MaxEncodedSize(len(data))))
	default:
		return nil, fmt.Errorf("unsupported compression codec: %s", codec)
	}

	res := make([]byte, HeaderLength, HeaderLength+len(packed))
	PutHeader(res, uint32(len(data)), uint32(len(packed)))

	return append(res, packed...), nil
}

// NewDeflateReader returns streaming DEFLATE decoder reading from r.
//
// If r implements io.ByteReader, the decoder never reads past the end
// of the DEFLATE stream.
func (c *Config) NewDeflateReader(r io.Reader) io.ReadCloser {
	return flate.NewReader(r)
}

// maxZstdRatio is the largest output per packed byte a zstd frame can
// produce: a 4-byte RLE block expands to at most 128 KiB.
const maxZstdRatio = (128 << 10) / 4

// DecompressZstd decodes given zstd frames. rawSize is checked against the
// frame header and against the most a frame of len(packed) bytes can expand
// to before any output is allocated, so a broken envelope cannot request
// more memory than its payload could legitimately produce.
func (c *Config) DecompressZstd(packed []byte, rawSize uint32) ([]byte, error) {
	if uint64(rawSize) > uint64(len(packed))*maxZstdRatio {
		return nil, fmt.Errorf("declared size %d is unreachable from %d packed bytes", rawSize, len(packed))
	}

	if len(packed) > 0 {
		var h zstd.Header
		if err := h.Decode(packed); err != nil {
			return nil, fmt.Errorf("decode zstd frame header: %w", err)
		}

		if h.HasFCS && h.FrameContentSize != uint64(rawSize) {
			return nil, fmt.Errorf("zstd frame declares %d bytes, envelope %d", h.FrameContentSize, rawSize)
		}
	}

	return c.decoder.DecodeAll(packed, nil)
}

// Close closes encoder and decoder, returns any error occurred.
func (c *Config) Close() error {
	var err error
	if c.encoder != nil {
		err = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return err
}
