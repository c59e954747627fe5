package container

import (
	"fmt"
	"strconv"

	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
	"github.com/spf13/cobra"
)

var (
	vType string
	vID   string
	vRaw  bool
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Record payload",
	Long: `Get payload of the first record with the given type and ID.
Type is either a four-character tag or its 0x-prefixed hex form.`,
	Args: cobra.NoArgs,
	Run:  getFunc,
}

func init() {
	common.AddComponentPathFlag(getCMD, &vPath)
	common.AddOutputFileFlag(getCMD, &vOut)

	getCMD.Flags().StringVar(&vType, "type", "", "Record type tag")
	_ = getCMD.MarkFlagRequired("type")
	getCMD.Flags().StringVar(&vID, "id", "", "Record ID, decimal or 0x-prefixed hex")
	_ = getCMD.MarkFlagRequired("id")
	getCMD.Flags().BoolVar(&vRaw, "raw", false, "Do not decompress the payload")
}

func getFunc(cmd *cobra.Command, _ []string) {
	typ, err := container.ParseTag(vType)
	common.ExitOnErr(cmd, err)

	id, err := strconv.ParseUint(vID, 0, 32)
	common.ExitOnErr(cmd, common.Errf("invalid record ID: %w", err))

	c := openContainer(cmd)
	defer c.Close()

	e, ok := c.FindRecord(typ, uint32(id), 0)
	if !ok {
		common.ExitOnErr(cmd, fmt.Errorf("no %s record 0x%x in %s", typ, id, c.Path()))
	}

	data, err := c.ReadRecord(e, !vRaw)
	common.ExitOnErr(cmd, common.Errf("could not read record: %w", err))

	cmd.PrintErrf("Record #%d, group %d, codec %s, %d bytes\n", e.Index, e.GroupID, e.Codec(), len(data))

	common.ExitOnErr(cmd, common.WriteOutput(cmd, vOut, data))
}
