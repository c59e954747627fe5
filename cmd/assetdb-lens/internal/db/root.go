package db

import (
	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/pkg/asset_storage/database"
	"github.com/spf13/cobra"
)

var (
	vPath string
	vOut  string
)

// Root contains `db` command definition.
var Root = &cobra.Command{
	Use:   "db",
	Short: "Operations with asset databases",
}

func init() {
	Root.AddCommand(infoCMD)
	Root.AddCommand(getCMD)
	Root.AddCommand(depsCMD)
}

// openDatabase loads database with all its dependencies. Returned manager
// must be closed by the caller.
func openDatabase(cmd *cobra.Command) (*database.Manager, *database.Database) {
	p, err := common.ExpandPath(vPath)
	common.ExitOnErr(cmd, err)

	m, err := common.NewManager()
	common.ExitOnErr(cmd, err)

	db, err := m.Load(p)
	if err != nil {
		_ = m.Close()
		common.ExitOnErr(cmd, err)
	}

	return m, db
}
