package main

import (
	"context"
	"os"

	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/cmd/assetdb-lens/internal/container"
	"github.com/rebelforge/assetdb/cmd/assetdb-lens/internal/db"
	"github.com/rebelforge/assetdb/cmd/internal/cmderr"
	"github.com/rebelforge/assetdb/misc"
	"github.com/rebelforge/assetdb/pkg/util/grace"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:   "assetdb-lens",
	Short: "Asset database lens",
	Long: `Asset database lens provides tools to browse containers and databases
of the asset storage.`,
	RunE:               entryPoint,
	PersistentPreRunE:  common.Setup,
	PersistentPostRunE: common.Teardown,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func entryPoint(cmd *cobra.Command, _ []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Print(misc.BuildInfo("AssetDB Lens"))

		return nil
	}

	return cmd.Usage()
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)
	command.Flags().Bool("version", false, "Application version")

	pf := command.PersistentFlags()
	pf.StringP(common.ConfigFlag, "c", "", "Config file (~ is expanded)")
	pf.Bool(common.DebugFlag, false, "Enable debug logging")
	pf.Bool(common.StatsFlag, false, "Print collected metrics to stderr after the command")

	command.AddCommand(
		container.Root,
		db.Root,
	)
}

func main() {
	ctx, cancel := grace.NewGracefulContext(context.Background())

	err := command.ExecuteContext(ctx)
	cancel()
	cmderr.ExitOnErr(err)
}
