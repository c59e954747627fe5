package container

import (
	"bytes"
	"testing"

	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testManifest = `
codec: deflate
records:
  - type: TXTR
    id: 0x10
    group: 3
    file: payload/brick.raw
  - type: SOND
    id: 2
    data: inline payload
    codec: none
  - type: "0x4c444f4d"
    id: 7
    data: mdl
    codec: zstd
`

func writeFile(t *testing.T, fs afero.Fs, path, data string) {
	require.NoError(t, afero.WriteFile(fs, path, []byte(data), 0o644))
}

func TestReadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/pack/manifest.yaml", testManifest)
	writeFile(t, fs, "/pack/payload/brick.raw", "bricks")

	records, err := readManifest(fs, "/pack/manifest.yaml")
	require.NoError(t, err)
	require.Equal(t, []container.Record{
		{Type: container.NewTag("TXTR"), ID: 0x10, GroupID: 3, Data: []byte("bricks"), Codec: compression.CodecDeflate},
		{Type: container.NewTag("SOND"), ID: 2, Data: []byte("inline payload"), Codec: compression.CodecNone},
		{Type: container.NewTag("MODL"), ID: 7, Data: []byte("mdl"), Codec: compression.CodecZstd},
	}, records)
}

func TestReadManifest_Errors(t *testing.T) {
	for _, tc := range []struct {
		name, manifest, err string
	}{
		{"empty", "", "empty manifest"},
		{"unknown field", "records:\n  - type: TXTR\n    size: 1\n    data: x\n", "field size not found"},
		{"default codec", "codec: lz4\nrecords: []\n", "unknown compression codec"},
		{"record codec", "records:\n  - type: TXTR\n    data: x\n    codec: lz4\n", "record #0: unknown compression codec"},
		{"bad type", "records:\n  - type: TEXTURE\n    data: x\n", "record #0: invalid record type"},
		{"no payload", "records:\n  - type: TXTR\n", "neither file nor data is set"},
		{"both payloads", "records:\n  - type: TXTR\n    data: x\n    file: y\n", "both file and data are set"},
		{"missing file", "records:\n  - type: TXTR\n    file: y\n", "read payload"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/m.yaml", tc.manifest)

			_, err := readManifest(fs, "/m.yaml")
			require.ErrorContains(t, err, tc.err)
		})
	}

	_, err := readManifest(afero.NewMemMapFs(), "/missing.yaml")
	require.Error(t, err)
}

func TestPack(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/pack/manifest.yaml", testManifest)
	writeFile(t, fs, "/pack/payload/brick.raw", "bricks")

	records, err := readManifest(fs, "/pack/manifest.yaml")
	require.NoError(t, err)

	var cc compression.Config
	require.NoError(t, cc.Init())
	t.Cleanup(func() { _ = cc.Close() })

	var buf bytes.Buffer
	n, err := pack(&buf, &cc, records)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	writeFile(t, fs, "/out.tex", buf.String())

	c, err := container.Open(fs, "/out.tex", container.WithCompressor(&cc))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.Equal(t, len(records), c.Len())

	for _, r := range records {
		e, ok := c.FindRecord(r.Type, r.ID, 0)
		require.True(t, ok, r.Type)
		require.Equal(t, r.GroupID, e.GroupID)
		require.Equal(t, r.Codec, e.Codec())

		data, err := c.ReadRecord(e, true)
		require.NoError(t, err)
		require.Equal(t, string(r.Data), string(data))
	}
}
