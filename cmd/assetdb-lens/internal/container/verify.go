package container

import (
	"context"
	"errors"
	"os"

	"github.com/cheggaaa/pb"
	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/cmd/internal/cmderr"
	storageconfig "github.com/rebelforge/assetdb/cmd/internal/config/storage"
	storagecommon "github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	"github.com/rebelforge/assetdb/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/term"
)

var vWorkers int

var verifyCMD = &cobra.Command{
	Use:   "verify",
	Short: "Check integrity of all records",
	Long: `Stream every record of the container through the decompressor and
check declared sizes. Progress is shown when output is a terminal.`,
	Args: cobra.NoArgs,
	Run:  verifyFunc,
}

func init() {
	common.AddComponentPathFlag(verifyCMD, &vPath)
	verifyCMD.Flags().IntVar(&vWorkers, "workers", 0, "Number of verification workers (storage.verify_workers if not set)")
}

func verifyFunc(cmd *cobra.Command, _ []string) {
	workers := vWorkers
	if workers <= 0 {
		workers = storageconfig.VerifyWorkers(common.Config())
	}

	pool, err := util.NewWorkerPool(workers)
	common.ExitOnErr(cmd, common.Errf("could not create worker pool: %w", err))
	defer pool.Release()

	c := openContainer(cmd)
	defer c.Close()

	var p *pb.ProgressBar
	if term.IsTerminal(int(os.Stdout.Fd())) {
		p = pb.New(c.Len())
		p.Output = cmd.OutOrStdout()
		p.Start()
	}

	var failed atomic.Uint32

	err = c.Verify(cmd.Context(), pool, func(_ container.DirectoryEntry, err error) {
		if err != nil {
			failed.Inc()
		}

		if p != nil {
			p.Increment()
		}
	})

	if p != nil {
		p.Finish()
	}

	cmd.Printf("Verified %d records, %d failed\n", c.Len(), failed.Load())

	common.ExitOnErr(cmd, verifyExitErr(err))
}

// verifyExitErr attaches exit code to the verification result so scripts
// can tell corrupted containers from other failures.
func verifyExitErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return cmderr.ExitErr{Code: cmderr.CodeInterrupted, Cause: err}
	case errors.Is(err, storagecommon.ErrIntegrity):
		return cmderr.ExitErr{Code: cmderr.CodeIntegrity, Cause: err}
	default:
		return err
	}
}
