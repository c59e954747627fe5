package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "assetdb"

const kindLabelKey = "kind"

// AssetMetrics collects statistics of asset caches and database loads.
type AssetMetrics struct {
	cacheMetrics
	databaseMetrics
}

// NewAssetMetrics creates AssetMetrics and registers them in reg. Version
// is exported as a constant label of the version gauge.
//
// Panics if any metric is already registered in reg.
func NewAssetMetrics(reg prometheus.Registerer, version string) *AssetMetrics {
	cache := newCacheMetrics()
	cache.register(reg)

	db := newDatabaseMetrics()
	db.register(reg)

	registerVersionMetric(reg, namespace, version)

	return &AssetMetrics{
		cacheMetrics:    cache,
		databaseMetrics: db,
	}
}
