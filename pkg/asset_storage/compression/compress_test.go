package compression

import (
	"bytes"
	"crypto/rand"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func notSoRandomSlice(size, blockSize int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data[:blockSize])
	for i := blockSize; i < size; i += blockSize {
		copy(data[i:], data[:blockSize])
	}
	return data
}

func TestCompress(t *testing.T) {
	var c Config
	require.NoError(t, c.Init())
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	data := notSoRandomSlice(32*1024, 123)

	t.Run("none", func(t *testing.T) {
		res, err := c.Compress(CodecNone, data)
		require.NoError(t, err)
		require.Equal(t, data, res)
	})

	t.Run("deflate", func(t *testing.T) {
		res, err := c.Compress(CodecDeflate, data)
		require.NoError(t, err)

		raw, packed := ParseHeader(res)
		require.EqualValues(t, len(data), raw)
		require.EqualValues(t, len(res)-HeaderLength, packed)
		require.Less(t, len(res), len(data))

		r := c.NewDeflateReader(bytes.NewReader(res[HeaderLength:]))
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.Equal(t, data, got)
	})

	t.Run("zstd", func(t *testing.T) {
		res, err := c.Compress(CodecZstd, data)
		require.NoError(t, err)

		raw, packed := ParseHeader(res)
		require.EqualValues(t, len(data), raw)
		require.EqualValues(t, len(res)-HeaderLength, packed)

		got, err := c.DecompressZstd(res[HeaderLength:], raw)
		require.NoError(t, err)
		require.Equal(t, data, got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := c.Compress(Codec(42), data)
		require.Error(t, err)
	})
}

func TestDecompressZstd(t *testing.T) {
	var c Config
	require.NoError(t, c.Init())
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	data := notSoRandomSlice(4*1024, 64)

	env, err := c.Compress(CodecZstd, data)
	require.NoError(t, err)
	packed := env[HeaderLength:]

	t.Run("frame size mismatch", func(t *testing.T) {
		_, err := c.DecompressZstd(packed, uint32(len(data))+1)
		require.ErrorContains(t, err, "zstd frame declares")
	})

	t.Run("unreachable size", func(t *testing.T) {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)

		_, err := c.DecompressZstd(packed, 0xF0000000)
		require.ErrorContains(t, err, "unreachable")

		runtime.ReadMemStats(&after)
		require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
	})

	t.Run("not a frame", func(t *testing.T) {
		_, err := c.DecompressZstd([]byte("definitely not zstd"), 4)
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		env, err := c.Compress(CodecZstd, nil)
		require.NoError(t, err)

		raw, _ := ParseHeader(env)
		got, err := c.DecompressZstd(env[HeaderLength:], raw)
		require.NoError(t, err)
		require.Empty(t, got)

		_, err = c.DecompressZstd(nil, 1)
		require.Error(t, err)
	})
}

func TestParseCodec(t *testing.T) {
	for _, c := range []Codec{CodecNone, CodecDeflate, CodecZstd} {
		parsed, err := ParseCodec(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
	}

	_, err := ParseCodec("lzma")
	require.Error(t, err)
}
