package grace

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewGracefulContext(t *testing.T) {
	t.Run("signal", func(t *testing.T) {
		ctx, cancel := NewGracefulContext(context.Background())
		defer cancel()

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGHUP))

		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("context is not cancelled by signal")
		}
	})

	t.Run("parent", func(t *testing.T) {
		parent, cancelParent := context.WithCancel(context.Background())

		ctx, cancel := NewGracefulContext(parent)
		defer cancel()

		cancelParent()
		require.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
