// Package cmderr maps command failures to process exit codes shared by
// the assetdb command line tools.
package cmderr

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes returned by the tools.
const (
	// CodeFailure is used for any error without a more specific code.
	CodeFailure = 1
	// CodeIntegrity means stored data contradicts its declaration, e.g.
	// a container record failed verification.
	CodeIntegrity = 2
	// CodeInterrupted means the command was stopped by a signal before
	// it finished.
	CodeInterrupted = 130
)

// ExitErr binds an exit code to the error that caused it.
type ExitErr struct {
	Code  int
	Cause error
}

func (x ExitErr) Error() string { return x.Cause.Error() }

func (x ExitErr) Unwrap() error { return x.Cause }

// Code returns exit code for err: 0 for nil, the code of the first ExitErr
// in the chain or CodeFailure otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}

	var e ExitErr
	if errors.As(err, &e) && e.Code != 0 {
		return e.Code
	}

	return CodeFailure
}

// ExitOnErr writes error to os.Stderr and calls os.Exit with the code
// returned by Code. Does nothing if err is nil.
func ExitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(Code(err))
	}
}
