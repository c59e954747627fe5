package loggerconfig_test

import (
	"testing"

	"github.com/rebelforge/assetdb/cmd/internal/config"
	loggerconfig "github.com/rebelforge/assetdb/cmd/internal/config/logger"
	configtest "github.com/rebelforge/assetdb/cmd/internal/config/test"
	"github.com/stretchr/testify/require"
)

func TestLoggerSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		emptyConfig := configtest.EmptyConfig(t)
		require.Equal(t, loggerconfig.LevelDefault, loggerconfig.Level(emptyConfig))
		require.Equal(t, loggerconfig.EncodingDefault, loggerconfig.Encoding(emptyConfig))
	})

	const path = "../test/config"

	configtest.ForEachFileType(t, path, func(c *config.Config) {
		require.Equal(t, "debug", loggerconfig.Level(c))
		require.Equal(t, "json", loggerconfig.Encoding(c))
	})
}
