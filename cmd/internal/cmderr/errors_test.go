package cmderr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	cause := errors.New("record #1: integrity violation")

	for _, tc := range []struct {
		name string
		err  error
		code int
	}{
		{name: "nil", err: nil, code: 0},
		{name: "plain", err: cause, code: CodeFailure},
		{name: "exit error", err: ExitErr{Code: CodeIntegrity, Cause: cause}, code: CodeIntegrity},
		{name: "wrapped", err: fmt.Errorf("verify: %w", ExitErr{Code: CodeInterrupted, Cause: context.Canceled}), code: CodeInterrupted},
		{name: "zero code", err: ExitErr{Cause: cause}, code: CodeFailure},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestExitErr(t *testing.T) {
	err := ExitErr{Code: CodeInterrupted, Cause: fmt.Errorf("verify: %w", context.Canceled)}

	require.EqualError(t, err, "verify: context canceled")
	require.ErrorIs(t, err, context.Canceled)
}
