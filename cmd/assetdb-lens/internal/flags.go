package common

import (
	"github.com/spf13/cobra"
)

const (
	flagPath      = "path"
	flagPathUsage = "Path to the component"

	flagOutFile      = "out"
	flagOutFileUsage = "File to save output to (stdout if omitted)"
)

// AddComponentPathFlag adds the path-to-component flag to the
// cobra command.
func AddComponentPathFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagPath, "", flagPathUsage)
	_ = cmd.MarkFlagRequired(flagPath)
}

// AddOutputFileFlag adds the output file flag to the cobra command.
func AddOutputFileFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagOutFile, "", flagOutFileUsage)
}
