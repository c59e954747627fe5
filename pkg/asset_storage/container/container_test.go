package container

import (
	"bytes"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var (
	tagTexture = NewTag("TXTR")
	tagPalette = NewTag("PALT")
)

func newCompressor(t testing.TB) *compression.Config {
	var cc compression.Config
	require.NoError(t, cc.Init())
	t.Cleanup(func() { _ = cc.Close() })
	return &cc
}

func testPayload(size int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data[:size/4])
	// repeat the random prefix so that compression has something to do
	for i := size / 4; i < size; i += size / 4 {
		copy(data[i:], data[:size/4])
	}
	return data
}

func writeFile(t testing.TB, fs afero.Fs, path string, data []byte) {
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func buildContainer(t testing.TB, cc *compression.Config, records ...Record) []byte {
	b := NewBuilder(cc)
	for i := range records {
		b.Add(records[i])
	}

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	return buf.Bytes()
}

// assemble lays out header, payload region and directory without any
// validation so that broken containers can be produced.
func assemble(h Header, payload []byte, entries []DirectoryEntry) []byte {
	if h.Version == 0 {
		h.Version = MaxVersion
	}
	if h.DirOffset == 0 {
		h.DirOffset = uint32(HeaderSize + len(payload))
	}
	if h.RecordCount == 0 {
		h.RecordCount = uint32(len(entries))
	}

	buf := make([]byte, HeaderSize, HeaderSize+len(payload)+len(entries)*EntrySize)
	h.encode(buf)
	buf = append(buf, payload...)

	dir := make([]byte, len(entries)*EntrySize)
	for i := range entries {
		entries[i].encode(dir[i*EntrySize:])
	}

	return append(buf, dir...)
}

func openBytes(t testing.TB, data []byte, opts ...Option) (*Container, error) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/c.tex", data)

	c, err := Open(fs, "/c.tex", opts...)
	if err == nil {
		t.Cleanup(func() { require.NoError(t, c.Close()) })
	}

	return c, err
}

func TestContainer_Directory(t *testing.T) {
	cc := newCompressor(t)

	records := []Record{
		{Type: tagTexture, ID: 0x10, GroupID: 1, Data: []byte("first")},
		{Type: tagPalette, ID: 0x10, GroupID: 1, Data: []byte("palette")},
		{Type: tagTexture, ID: 0x11, GroupID: 2, Data: testPayload(4096), Codec: compression.CodecDeflate},
		{Type: tagTexture, ID: 0x12, GroupID: 2, Data: nil},
	}

	c, err := openBytes(t, buildContainer(t, cc, records...), WithCompressor(cc))
	require.NoError(t, err)

	require.Equal(t, len(records), c.Len())
	require.EqualValues(t, len(records), c.Header().RecordCount)
	require.Equal(t, "/c.tex", c.Path())

	t.Run("restartable iteration", func(t *testing.T) {
		first := slices.Collect(c.All())
		second := slices.Collect(c.All())
		require.Len(t, first, len(records))
		require.Equal(t, first, second)

		for i, e := range first {
			require.EqualValues(t, i, e.Index)
			require.Equal(t, records[i].Type, e.Type)
			require.Equal(t, records[i].ID, e.RecordID)
			require.Equal(t, records[i].GroupID, e.GroupID)
			require.Equal(t, c.Entry(i), e)
		}

		var viaIterate []DirectoryEntry
		require.NoError(t, c.Iterate(func(e DirectoryEntry) error {
			viaIterate = append(viaIterate, e)
			return nil
		}))
		require.Equal(t, first, viaIterate)
	})

	t.Run("leave early", func(t *testing.T) {
		n := 0
		for range c.All() {
			if n++; n == 2 {
				break
			}
		}
		require.Equal(t, 2, n)

		errStop := io.ErrShortBuffer
		require.ErrorIs(t, c.Iterate(func(DirectoryEntry) error { return errStop }), errStop)
	})

	t.Run("find", func(t *testing.T) {
		e, ok := c.FindFirst(tagTexture, 0)
		require.True(t, ok)
		require.EqualValues(t, 0, e.Index)

		e, ok = c.FindFirst(tagTexture, int(e.Index)+1)
		require.True(t, ok)
		require.EqualValues(t, 2, e.Index)

		_, ok = c.FindFirst(NewTag("NONE"), 0)
		require.False(t, ok)

		e, ok = c.FindRecord(tagTexture, 0x12, 0)
		require.True(t, ok)
		require.EqualValues(t, 3, e.Index)

		e, ok = c.FindRecord(tagPalette, 0x10, -5)
		require.True(t, ok)
		require.EqualValues(t, 1, e.Index)

		_, ok = c.FindRecord(tagTexture, 0x10, 1)
		require.False(t, ok)

		_, ok = c.FindRecord(tagTexture, 0x10, 100)
		require.False(t, ok)
	})

	t.Run("read", func(t *testing.T) {
		for i := range records {
			data, err := c.ReadRecord(c.Entry(i), true)
			require.NoError(t, err)
			require.Equal(t, len(records[i].Data), len(data))
			if len(data) > 0 {
				require.Equal(t, records[i].Data, data)
			}
		}

		e := c.Entry(2)
		require.True(t, e.Compressed())
		require.Equal(t, compression.CodecDeflate, e.Codec())

		raw, err := c.ReadRecord(e, false)
		require.NoError(t, err)
		require.Len(t, raw, int(e.DataSize))

		rawSize, packedSize := compression.ParseHeader(raw)
		require.EqualValues(t, len(records[2].Data), rawSize)
		require.EqualValues(t, len(raw)-compression.HeaderLength, packedSize)
	})

	t.Run("foreign entry", func(t *testing.T) {
		e := c.Entry(0)
		e.DataSize++
		_, err := c.StreamFor(e, true)
		require.Error(t, err)
	})
}

func TestContainer_Zstd(t *testing.T) {
	cc := newCompressor(t)
	data := testPayload(64 * 1024)

	c, err := openBytes(t, buildContainer(t, cc,
		Record{Type: tagTexture, ID: 1, Data: data, Codec: compression.CodecZstd},
	))
	require.NoError(t, err)

	e := c.Entry(0)
	require.Equal(t, compression.CodecZstd, e.Codec())

	got, err := c.ReadRecord(e, true)
	require.NoError(t, err)
	require.Equal(t, data, got)

	env, err := cc.Compress(compression.CodecZstd, data)
	require.NoError(t, err)
	packed := env[compression.HeaderLength:]

	zstdRecord := func(rawSize uint32, packed []byte) []byte {
		payload := make([]byte, compression.HeaderLength, compression.HeaderLength+len(packed))
		compression.PutHeader(payload, rawSize, uint32(len(packed)))
		payload = append(payload, packed...)

		return assemble(Header{}, payload, []DirectoryEntry{{
			Type:       tagTexture,
			Flags:      FlagZstd,
			RecordID:   3,
			DataOffset: HeaderSize,
			DataSize:   uint32(len(payload)),
		}})
	}

	for _, tc := range []struct {
		name    string
		rawSize uint32
		packed  []byte
	}{
		{name: "raw size mismatch", rawSize: uint32(len(data)) - 1, packed: packed},
		{name: "trailing bytes", rawSize: uint32(len(data)), packed: append(bytes.Clone(packed), "trailing"...)},
		{name: "truncated frame", rawSize: uint32(len(data)), packed: packed[:len(packed)/2]},
		{name: "huge declared size", rawSize: 0xF0000000, packed: packed[:26]},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := openBytes(t, zstdRecord(tc.rawSize, tc.packed), WithCompressor(cc))
			require.NoError(t, err)

			_, err = c.ReadRecord(c.Entry(0), true)
			require.ErrorIs(t, err, common.ErrIntegrity)
		})
	}
}

func TestContainer_Integrity(t *testing.T) {
	cc := newCompressor(t)
	data := testPayload(8192)

	env, err := cc.Compress(compression.CodecDeflate, data)
	require.NoError(t, err)
	packed := env[compression.HeaderLength:]

	deflateRecord := func(rawSize uint32, packed []byte, declaredPacked uint32) []byte {
		payload := make([]byte, compression.HeaderLength, compression.HeaderLength+len(packed))
		compression.PutHeader(payload, rawSize, declaredPacked)
		payload = append(payload, packed...)

		return assemble(Header{}, payload, []DirectoryEntry{{
			Type:       tagTexture,
			Flags:      FlagDeflate,
			RecordID:   7,
			DataOffset: HeaderSize,
			DataSize:   uint32(len(payload)),
		}})
	}

	t.Run("valid", func(t *testing.T) {
		c, err := openBytes(t, deflateRecord(uint32(len(data)), packed, uint32(len(packed))), WithCompressor(cc))
		require.NoError(t, err)

		got, err := c.ReadRecord(c.Entry(0), true)
		require.NoError(t, err)
		require.Equal(t, data, got)
	})

	t.Run("stream ends before declared length", func(t *testing.T) {
		withJunk := append(bytes.Clone(packed), 'x', 'y', 'z')

		c, err := openBytes(t, deflateRecord(uint32(len(data)), withJunk, uint32(len(withJunk))), WithCompressor(cc))
		require.NoError(t, err)

		got, err := c.ReadRecord(c.Entry(0), true)
		require.ErrorIs(t, err, common.ErrIntegrity)
		require.Equal(t, data, got)

		// raw access is not checked
		_, err = c.ReadRecord(c.Entry(0), false)
		require.NoError(t, err)
	})

	t.Run("raw size mismatch", func(t *testing.T) {
		c, err := openBytes(t, deflateRecord(uint32(len(data))+1, packed, uint32(len(packed))), WithCompressor(cc))
		require.NoError(t, err)

		_, err = c.ReadRecord(c.Entry(0), true)
		require.ErrorIs(t, err, common.ErrIntegrity)
	})

	t.Run("truncated stream", func(t *testing.T) {
		short := packed[:len(packed)/2]

		c, err := openBytes(t, deflateRecord(uint32(len(data)), short, uint32(len(short))), WithCompressor(cc))
		require.NoError(t, err)

		_, err = c.ReadRecord(c.Entry(0), true)
		require.ErrorIs(t, err, common.ErrIntegrity)
	})

	t.Run("declared length exceeds payload", func(t *testing.T) {
		c, err := openBytes(t, deflateRecord(uint32(len(data)), packed, uint32(len(packed))+100), WithCompressor(cc))
		require.NoError(t, err)

		_, err = c.StreamFor(c.Entry(0), true)
		require.ErrorIs(t, err, common.ErrFormat)
	})

	t.Run("sticky error", func(t *testing.T) {
		c, err := openBytes(t, deflateRecord(uint32(len(data))+1, packed, uint32(len(packed))), WithCompressor(cc))
		require.NoError(t, err)

		s, err := c.StreamFor(c.Entry(0), true)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		_, err = io.ReadAll(s)
		require.ErrorIs(t, err, common.ErrIntegrity)

		_, err = s.Read(make([]byte, 1))
		require.ErrorIs(t, err, common.ErrIntegrity)
	})
}

func TestOpen_Format(t *testing.T) {
	valid := assemble(Header{}, []byte("payload"), []DirectoryEntry{{
		Type: tagTexture, RecordID: 1, DataOffset: HeaderSize, DataSize: 7,
	}})

	_, err := openBytes(t, valid)
	require.NoError(t, err)

	for name, mutate := range map[string]func([]byte) []byte{
		"short file": func(b []byte) []byte { return b[:HeaderSize-1] },
		"bad magic": func(b []byte) []byte {
			b[0] = 'X'
			return b
		},
		"future version": func(b []byte) []byte {
			b[4] = MaxVersion + 1
			return b
		},
		"zero version": func(b []byte) []byte {
			b[4] = 0
			return b
		},
		"header flags": func(b []byte) []byte {
			b[6] = 1
			return b
		},
		"record count exceeds file": func(b []byte) []byte {
			b[12] = 2
			return b
		},
		"directory inside header": func(b []byte) []byte {
			b[8], b[9] = 4, 0
			return b
		},
		"truncated directory": func(b []byte) []byte { return b[:len(b)-1] },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := openBytes(t, mutate(bytes.Clone(valid)))
			require.ErrorIs(t, err, common.ErrFormat)
		})
	}

	for name, entries := range map[string][]DirectoryEntry{
		"index mismatch": {
			{Index: 1, Type: tagTexture, DataOffset: HeaderSize, DataSize: 7},
		},
		"payload out of bounds": {
			{Type: tagTexture, DataOffset: HeaderSize, DataSize: 1000},
		},
		"payload over header": {
			{Type: tagTexture, DataOffset: 2, DataSize: 4},
		},
		"payload over directory": {
			{Type: tagTexture, DataOffset: HeaderSize + 5, DataSize: 4},
		},
		"unknown flags": {
			{Type: tagTexture, Flags: 1 << 7, DataOffset: HeaderSize, DataSize: 7},
		},
		"several codecs": {
			{Type: tagTexture, Flags: FlagDeflate | FlagZstd, DataOffset: HeaderSize, DataSize: 7},
		},
		"envelope too short": {
			{Type: tagTexture, Flags: FlagDeflate, DataOffset: HeaderSize, DataSize: 7},
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := openBytes(t, assemble(Header{}, []byte("payload"), entries))
			require.ErrorIs(t, err, common.ErrFormat)
		})
	}

	t.Run("overlapping payloads", func(t *testing.T) {
		_, err := openBytes(t, assemble(Header{}, []byte("payload"), []DirectoryEntry{
			{Index: 0, Type: tagTexture, DataOffset: HeaderSize, DataSize: 5},
			{Index: 1, Type: tagTexture, DataOffset: HeaderSize + 3, DataSize: 4},
		}))
		require.ErrorIs(t, err, common.ErrIntegrity)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(afero.NewMemMapFs(), "/missing.tex")
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty container", func(t *testing.T) {
		c, err := openBytes(t, buildContainer(t, nil))
		require.NoError(t, err)
		require.Zero(t, c.Len())
	})
}

func TestContainer_OS(t *testing.T) {
	cc := newCompressor(t)
	path := filepath.Join(t.TempDir(), "level.tex")

	data := testPayload(2048)
	require.NoError(t, os.WriteFile(path, buildContainer(t, cc,
		Record{Type: tagTexture, ID: 3, Data: data, Codec: compression.CodecDeflate},
	), 0o644))

	c, err := Open(afero.NewOsFs(), path, WithCompressor(cc))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	e, ok := c.FindRecord(tagTexture, 3, 0)
	require.True(t, ok)

	got, err := c.ReadRecord(e, true)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestBuilder_NoCompressor(t *testing.T) {
	b := NewBuilder(nil)
	b.Add(Record{Type: tagTexture, Data: []byte("x"), Codec: compression.CodecZstd})
	require.Equal(t, 1, b.Len())

	_, err := b.WriteTo(io.Discard)
	require.ErrorIs(t, err, errNoCompressor)
}

func TestTag(t *testing.T) {
	require.Equal(t, "TXTR", tagTexture.String())
	require.Equal(t, "AB  ", NewTag("AB").String())
	require.Equal(t, "0x00000001", Tag(1).String())

	tag, err := ParseTag("TXTR")
	require.NoError(t, err)
	require.Equal(t, tagTexture, tag)

	tag, err = ParseTag(tagTexture.String())
	require.NoError(t, err)
	require.Equal(t, tagTexture, tag)

	tag, err = ParseTag("0x00000001")
	require.NoError(t, err)
	require.Equal(t, Tag(1), tag)

	_, err = ParseTag("TOOLONG")
	require.Error(t, err)
	_, err = ParseTag("0xZZ")
	require.Error(t, err)
}
