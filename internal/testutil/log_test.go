package testutil_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rebelforge/assetdb/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewBufferedLogger(t *testing.T) {
	for _, tc := range []struct {
		level zapcore.Level
		write func(*zap.Logger, string, ...zap.Field)
	}{
		{level: zap.DebugLevel, write: (*zap.Logger).Debug},
		{level: zap.InfoLevel, write: (*zap.Logger).Info},
		{level: zap.WarnLevel, write: (*zap.Logger).Warn},
		{level: zap.ErrorLevel, write: (*zap.Logger).Error},
	} {
		t.Run("level="+tc.level.String(), func(t *testing.T) {
			l, lb := testutil.NewBufferedLogger(t, tc.level)

			if tc.level > zap.DebugLevel {
				l.Debug("ignored")
			}
			lb.AssertEmpty()

			tc.write(l, "loaded", zap.Uint32("id", 16), zap.Duration("took", 123*time.Millisecond))

			require.Equal(t, []testutil.LogEntry{{
				Level:   tc.level,
				Message: "loaded",
				Fields: map[string]any{
					"id":   json.Number("16"),
					"took": json.Number("0.123"),
				},
			}}, lb.Entries())

			e := lb.AssertContains(tc.level, "loaded")
			require.Equal(t, json.Number("16"), e.Fields["id"])
			require.Empty(t, lb.Filter(tc.level, "other"))
		})
	}
}
