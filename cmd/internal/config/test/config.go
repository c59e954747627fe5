package configtest

import (
	"testing"

	"github.com/rebelforge/assetdb/cmd/internal/config"
	"github.com/stretchr/testify/require"
)

func fromFile(t testing.TB, path string) *config.Config {
	c, err := config.New(config.WithConfigFile(path))
	require.NoError(t, err)

	return c
}

// ForEachFileType passes configs read from next files:
//   - `<pref>.yaml`;
//   - `<pref>.json`.
func ForEachFileType(t testing.TB, pref string, f func(*config.Config)) {
	for _, p := range []string{
		pref + ".yaml",
		pref + ".json",
	} {
		f(fromFile(t, p))
	}
}

// EmptyConfig returns config without any values and sections.
func EmptyConfig(t testing.TB) *config.Config {
	c, err := config.New()
	require.NoError(t, err)

	return c
}
