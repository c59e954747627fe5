package db

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	common "github.com/rebelforge/assetdb/cmd/assetdb-lens/internal"
	"github.com/rebelforge/assetdb/pkg/asset_storage/database"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

var vFormat string

var infoCMD = &cobra.Command{
	Use:   "info",
	Short: "Database summary",
	Long:  `Print declaration version, dependency table and containers of the database.`,
	Args:  cobra.NoArgs,
	Run:   infoFunc,
}

func init() {
	common.AddComponentPathFlag(infoCMD, &vPath)
	infoCMD.Flags().StringVar(&vFormat, "format", formatTable, "Output format (table|yaml)")
}

type dbInfo struct {
	Path         string          `yaml:"path"`
	Version      uint32          `yaml:"version"`
	Dependencies []dependency    `yaml:"dependencies,omitempty"`
	Containers   []containerInfo `yaml:"containers,omitempty"`
}

type dependency struct {
	Index uint32 `yaml:"index"`
	Path  string `yaml:"path"`
}

type containerInfo struct {
	Kind    string `yaml:"kind"`
	Path    string `yaml:"path"`
	Version uint16 `yaml:"version"`
	Records int    `yaml:"records"`
}

func infoFunc(cmd *cobra.Command, _ []string) {
	m, db := openDatabase(cmd)
	defer m.Close()

	common.ExitOnErr(cmd, printInfo(cmd.OutOrStdout(), describe(db), vFormat))
}

func describe(db *database.Database) dbInfo {
	res := dbInfo{
		Path:    db.Path(),
		Version: db.Version(),
	}

	deps := db.Dependencies()
	for _, i := range slices.Sorted(maps.Keys(deps)) {
		res.Dependencies = append(res.Dependencies, dependency{Index: i, Path: deps[i].Path()})
	}

	for _, k := range db.Kinds() {
		c, _ := db.Container(k)
		res.Containers = append(res.Containers, containerInfo{
			Kind:    k,
			Path:    c.Path(),
			Version: c.Header().Version,
			Records: c.Len(),
		})
	}

	return res
}

func printInfo(w io.Writer, info dbInfo, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("could not encode info: %w", err)
		}

		return enc.Close()
	case formatTable:
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	fmt.Fprintf(w, "Path: %s\nVersion: %d\n", info.Path, info.Version)

	if len(info.Dependencies) > 0 {
		fmt.Fprintln(w, "Dependencies:")

		out := tablewriter.NewWriter(w)
		out.SetHeader([]string{"Index", "Path"})
		out.SetAutoWrapText(false)
		out.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, d := range info.Dependencies {
			out.Append([]string{strconv.FormatUint(uint64(d.Index), 10), d.Path})
		}

		out.Render()
	}

	if len(info.Containers) > 0 {
		fmt.Fprintln(w, "Containers:")

		out := tablewriter.NewWriter(w)
		out.SetHeader([]string{"Kind", "Path", "Version", "Records"})
		out.SetAutoWrapText(false)
		out.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, c := range info.Containers {
			out.Append([]string{c.Kind, c.Path, strconv.Itoa(int(c.Version)), strconv.Itoa(c.Records)})
		}

		out.Render()
	}

	return nil
}
