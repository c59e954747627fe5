package common

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/rebelforge/assetdb/cmd/internal/cmderr"
	"github.com/spf13/cobra"
)

// Errf returns formatted error in errFmt format if err is not nil.
func Errf(errFmt string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf(errFmt, err)
}

// ExitOnErr calls exitOnErrCode with the code cmderr.Code picks for err.
func ExitOnErr(cmd *cobra.Command, err error) {
	exitOnErrCode(cmd, err, cmderr.Code(err))
}

// exitOnErrCode prints error via cmd and calls os.Exit with passed exit code.
// Does nothing if err is nil.
func exitOnErrCode(cmd *cobra.Command, err error, code int) {
	if err != nil {
		cmd.PrintErrln(err)
		os.Exit(code)
	}
}

// ExpandPath replaces leading '~' in p with the home directory of the
// current user.
func ExpandPath(p string) (string, error) {
	res, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand path %s: %w", p, err)
	}

	return res, nil
}

// WriteOutput writes data to the file at path or to the command output if
// path is empty.
func WriteOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write file: %w", err)
	}

	return nil
}
