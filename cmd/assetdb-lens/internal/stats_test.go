package common

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rebelforge/assetdb/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestPrintStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAssetMetrics(reg, "v1.2.3")

	m.AddCacheHit("texture")
	m.AddCacheHit("texture")
	m.AddCacheMiss("model")
	m.AddDatabaseLoad(true)
	m.AddDatabaseLoadDuration(time.Second)

	var buf bytes.Buffer
	require.NoError(t, PrintStats(&buf, reg))

	out := buf.String()
	require.Contains(t, out, "assetdb_cache_hits_total")
	require.Contains(t, out, "kind=texture")
	require.Contains(t, out, "assetdb_cache_misses_total")
	require.Contains(t, out, "assetdb_database_load_time_count")
	require.Contains(t, out, "version=v1.2.3")
	require.NotContains(t, out, "evictions")
}

func TestExpandPath(t *testing.T) {
	p, err := ExpandPath("/abs/path")
	require.NoError(t, err)
	require.Equal(t, "/abs/path", p)

	p, err = ExpandPath("~/x")
	require.NoError(t, err)
	require.NotContains(t, p, "~")
}
