package container

import (
	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	vPath string
	vOut  string
)

// Root contains `container` command definition.
var Root = &cobra.Command{
	Use:   "container",
	Short: "Operations with asset containers",
}

func init() {
	Root.AddCommand(listCMD)
	Root.AddCommand(getCMD)
	Root.AddCommand(verifyCMD)
	Root.AddCommand(packCMD)
}

func openContainer(cmd *cobra.Command) *container.Container {
	p, err := common.ExpandPath(vPath)
	common.ExitOnErr(cmd, err)

	c, err := container.Open(afero.NewOsFs(), p,
		container.WithLogger(common.Logger()),
	)
	common.ExitOnErr(cmd, common.Errf("could not open container: %w", err))

	return c
}
