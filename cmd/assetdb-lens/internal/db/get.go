package db

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/pkg/asset_storage/asset"
	"github.com/rebelforge/assetdb/pkg/asset_storage/database"
	"github.com/spf13/cobra"
)

var (
	vKind string
	vRef  string
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Asset payload",
	Long: `Resolve asset reference against the database and print payload of
the referenced asset. Reference is either "<id>" for an asset of the
database itself or "<id>@<dependency index>".`,
	Args: cobra.NoArgs,
	Run:  getFunc,
}

func init() {
	common.AddComponentPathFlag(getCMD, &vPath)
	common.AddOutputFileFlag(getCMD, &vOut)

	getCMD.Flags().StringVar(&vKind, "kind", "", "Asset kind ("+strings.Join(slices.Sorted(maps.Keys(fetchers)), "|")+")")
	_ = getCMD.MarkFlagRequired("kind")
	getCMD.Flags().StringVar(&vRef, "ref", "", "Asset reference")
	_ = getCMD.MarkFlagRequired("ref")
}

// fetched is a kind-independent view of a resolved asset.
type fetched struct {
	asset.Record
	refs []asset.Ref
}

type fetcher func(*database.Database, asset.Ref) (*fetched, error)

var fetchers = map[string]fetcher{
	asset.TextureKind.Name():   fetch(asset.TextureKind, func(v *asset.Texture) fetched { return fetched{Record: v.Record} }),
	asset.ModelKind.Name():     fetch(asset.ModelKind, func(v *asset.Model) fetched { return fetched{Record: v.Record, refs: v.Textures} }),
	asset.BehaviorKind.Name():  fetch(asset.BehaviorKind, func(v *asset.Behavior) fetched { return fetched{Record: v.Record} }),
	asset.AnimationKind.Name(): fetch(asset.AnimationKind, func(v *asset.Animation) fetched { return fetched{Record: v.Record} }),
	asset.SoundKind.Name():     fetch(asset.SoundKind, func(v *asset.Sound) fetched { return fetched{Record: v.Record} }),
	asset.SequenceKind.Name():  fetch(asset.SequenceKind, func(v *asset.Sequence) fetched { return fetched{Record: v.Record} }),
}

func fetch[T any](k *asset.Kind[T], view func(T) fetched) fetcher {
	return func(db *database.Database, ref asset.Ref) (*fetched, error) {
		h, err := database.GetByRef(db, k, ref)
		if err != nil || h == nil {
			return nil, err
		}
		defer h.Release()

		res := view(h.Value())

		return &res, nil
	}
}

func getFunc(cmd *cobra.Command, _ []string) {
	f, ok := fetchers[vKind]
	if !ok {
		common.ExitOnErr(cmd, fmt.Errorf("unknown asset kind %q", vKind))
	}

	ref, err := asset.ParseRef(vRef)
	common.ExitOnErr(cmd, err)

	m, db := openDatabase(cmd)
	defer m.Close()

	res, err := f(db, ref)
	common.ExitOnErr(cmd, err)

	if res == nil {
		cmd.PrintErrf("Reference %s is null\n", ref)
		return
	}

	cmd.PrintErrf("%s 0x%x, group %d, %d bytes\n", vKind, res.ID, res.GroupID, len(res.Data))
	for i, r := range res.refs {
		cmd.PrintErrf("  reference #%d: %s\n", i, r)
	}

	common.ExitOnErr(cmd, common.WriteOutput(cmd, vOut, res.Data))
}
