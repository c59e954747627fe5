package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	storageconfig "github.com/rebelforge/assetdb/cmd/internal/config/storage"
	"github.com/rebelforge/assetdb/pkg/asset_storage/compression"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var vManifest string

var packCMD = &cobra.Command{
	Use:   "pack",
	Short: "Build container from manifest",
	Long: `Build container from YAML manifest:

  codec: deflate          # default codec of records, "none" if omitted
  records:
    - type: TXTR
      id: 0x10
      group: 1
      file: brick.raw     # relative to the manifest directory
    - type: SOND
      id: 2
      data: inline payload
      codec: none`,
	Args: cobra.NoArgs,
	Run:  packFunc,
}

func init() {
	packCMD.Flags().StringVar(&vManifest, "manifest", "", "Path to the YAML manifest")
	_ = packCMD.MarkFlagRequired("manifest")
	packCMD.Flags().StringVar(&vOut, "out", "", "Path to the resulting container")
	_ = packCMD.MarkFlagRequired("out")
}

type manifest struct {
	Codec   string           `yaml:"codec"`
	Records []manifestRecord `yaml:"records"`
}

type manifestRecord struct {
	Type  string  `yaml:"type"`
	ID    uint32  `yaml:"id"`
	Group uint32  `yaml:"group"`
	File  string  `yaml:"file"`
	Data  *string `yaml:"data"`
	Codec string  `yaml:"codec"`
}

func packFunc(cmd *cobra.Command, _ []string) {
	fsys := afero.NewOsFs()

	mPath, err := common.ExpandPath(vManifest)
	common.ExitOnErr(cmd, err)

	out, err := common.ExpandPath(vOut)
	common.ExitOnErr(cmd, err)

	records, err := readManifest(fsys, mPath)
	common.ExitOnErr(cmd, common.Errf("invalid manifest: %w", err))

	cc := compression.Config{ZstdLevel: storageconfig.ZstdLevel(common.Config())}
	common.ExitOnErr(cmd, common.Errf("could not init compression: %w", cc.Init()))
	defer cc.Close()

	var buf bytes.Buffer

	_, err = pack(&buf, &cc, records)
	common.ExitOnErr(cmd, err)

	common.ExitOnErr(cmd, common.Errf("could not create output directory: %w",
		fsys.MkdirAll(filepath.Dir(out), 0o755)))
	common.ExitOnErr(cmd, common.Errf("could not write container: %w",
		afero.WriteFile(fsys, out, buf.Bytes(), 0o644)))

	cmd.Printf("Packed %d records into %s (%d bytes)\n", len(records), out, buf.Len())
}

func pack(w io.Writer, cc *compression.Config, records []container.Record) (int64, error) {
	b := container.NewBuilder(cc)
	for i := range records {
		b.Add(records[i])
	}

	n, err := b.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("could not build container: %w", err)
	}

	return n, nil
}

// readManifest reads manifest at path and loads payloads of the records it
// lists. Payload files are resolved relative to the manifest directory.
func readManifest(fsys afero.Fs, path string) ([]container.Record, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m manifest

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	defCodec, err := compression.ParseCodec(m.Codec)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	res := make([]container.Record, 0, len(m.Records))

	for i, mr := range m.Records {
		r, err := mr.record(fsys, dir, defCodec)
		if err != nil {
			return nil, fmt.Errorf("record #%d: %w", i, err)
		}

		res = append(res, r)
	}

	return res, nil
}

func (mr manifestRecord) record(fsys afero.Fs, dir string, defCodec compression.Codec) (container.Record, error) {
	typ, err := container.ParseTag(mr.Type)
	if err != nil {
		return container.Record{}, err
	}

	codec := defCodec
	if mr.Codec != "" {
		codec, err = compression.ParseCodec(mr.Codec)
		if err != nil {
			return container.Record{}, err
		}
	}

	var data []byte

	switch {
	case mr.File != "" && mr.Data != nil:
		return container.Record{}, errors.New("both file and data are set")
	case mr.File != "":
		p := mr.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}

		data, err = afero.ReadFile(fsys, p)
		if err != nil {
			return container.Record{}, fmt.Errorf("read payload: %w", err)
		}
	case mr.Data != nil:
		data = []byte(*mr.Data)
	default:
		return container.Record{}, errors.New("neither file nor data is set")
	}

	return container.Record{
		Type:    typ,
		ID:      mr.ID,
		GroupID: mr.Group,
		Data:    data,
		Codec:   codec,
	}, nil
}
