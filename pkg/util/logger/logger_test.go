package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrm(t *testing.T) {
	var p Prm

	for _, s := range []string{"debug", "info", "warn", "error", "DEBUG"} {
		require.NoError(t, p.SetLevelString(s), s)
	}

	for _, s := range []string{"fatal", "panic", "verbose"} {
		require.Error(t, p.SetLevelString(s), s)
	}

	require.NoError(t, p.SetEncoding("json"))
	require.NoError(t, p.SetEncoding("console"))
	require.Error(t, p.SetEncoding("xml"))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(nil)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zap.InfoLevel))
	require.False(t, l.Core().Enabled(zap.DebugLevel))

	var p Prm
	require.NoError(t, p.SetLevelString("warn"))
	require.NoError(t, p.SetEncoding("json"))
	p.SetTimestamp(true)

	l, err = NewLogger(&p)
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zap.InfoLevel))
	require.True(t, l.Core().Enabled(zap.WarnLevel))
}
