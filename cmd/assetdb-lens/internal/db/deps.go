package db

import (
	"fmt"
	"io"
	"maps"
	"slices"

	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/pkg/asset_storage/database"
	"github.com/spf13/cobra"
)

var depsCMD = &cobra.Command{
	Use:   "deps",
	Short: "Dependency tree",
	Long:  `Print dependency tree of the database. Cycles are cut at the repeated database.`,
	Args:  cobra.NoArgs,
	Run:   depsFunc,
}

func init() {
	common.AddComponentPathFlag(depsCMD, &vPath)
}

func depsFunc(cmd *cobra.Command, _ []string) {
	m, db := openDatabase(cmd)
	defer m.Close()

	printTree(cmd.OutOrStdout(), db)
}

func printTree(w io.Writer, db *database.Database) {
	fmt.Fprintf(w, "%s (v%d)\n", db.Path(), db.Version())
	printDeps(w, db, "", map[*database.Database]bool{db: true})
}

// printDeps prints dependencies of db. stack holds databases of the current
// branch.
func printDeps(w io.Writer, db *database.Database, prefix string, stack map[*database.Database]bool) {
	deps := db.Dependencies()
	idx := slices.Sorted(maps.Keys(deps))

	for n, i := range idx {
		var (
			dep         = deps[i]
			branch, ind = "├── ", "│   "
		)

		if n == len(idx)-1 {
			branch, ind = "└── ", "    "
		}

		if stack[dep] {
			fmt.Fprintf(w, "%s%s%d: %s (cycle)\n", prefix, branch, i, dep.Path())
			continue
		}

		fmt.Fprintf(w, "%s%s%d: %s (v%d)\n", prefix, branch, i, dep.Path(), dep.Version())

		stack[dep] = true
		printDeps(w, dep, prefix+ind, stack)
		delete(stack, dep)
	}
}
