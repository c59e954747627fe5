package container

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "Directory of the container",
	Long:  `List all records of the container in directory order.`,
	Args:  cobra.NoArgs,
	Run:   listFunc,
}

func init() {
	common.AddComponentPathFlag(listCMD, &vPath)
}

func listFunc(cmd *cobra.Command, _ []string) {
	c := openContainer(cmd)
	defer c.Close()

	h := c.Header()
	cmd.Printf("Version: %d, records: %d\n", h.Version, h.RecordCount)

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"#", "Type", "ID", "Group", "Offset", "Size", "Codec"})
	out.SetAutoWrapText(false)
	out.SetAlignment(tablewriter.ALIGN_RIGHT)

	for e := range c.All() {
		out.Append([]string{
			strconv.FormatUint(uint64(e.Index), 10),
			e.Type.String(),
			"0x" + strconv.FormatUint(uint64(e.RecordID), 16),
			strconv.FormatUint(uint64(e.GroupID), 10),
			strconv.FormatUint(uint64(e.DataOffset), 10),
			strconv.FormatUint(uint64(e.DataSize), 10),
			e.Codec().String(),
		})
	}

	out.Render()
}
