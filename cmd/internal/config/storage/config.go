package storageconfig

import (
	"github.com/rebelforge/assetdb/cmd/internal/config"
)

const (
	subsection = "storage"

	// MaxDepthDefault is a default limit of dependency chain length.
	MaxDepthDefault = 16

	// PathCacheSizeDefault is a default number of cached directory listings.
	PathCacheSizeDefault = 256

	// VerifyWorkersDefault is a default number of container verification
	// workers.
	VerifyWorkersDefault = 4
)

// MaxDepth returns the value of "max_depth" config parameter
// from "storage" section.
//
// Returns MaxDepthDefault if the value is not a positive number.
func MaxDepth(c *config.Config) int {
	return positiveOr(c, "max_depth", MaxDepthDefault)
}

// PathCacheSize returns the value of "path_cache_size" config parameter
// from "storage" section.
//
// Returns PathCacheSizeDefault if the value is not a positive number.
func PathCacheSize(c *config.Config) int {
	return positiveOr(c, "path_cache_size", PathCacheSizeDefault)
}

// VerifyWorkers returns the value of "verify_workers" config parameter
// from "storage" section.
//
// Returns VerifyWorkersDefault if the value is not a positive number.
func VerifyWorkers(c *config.Config) int {
	return positiveOr(c, "verify_workers", VerifyWorkersDefault)
}

// ZstdLevel returns the value of "zstd_level" config parameter
// from "storage" section.
//
// Returns 0 (codec default) if the value is not set.
func ZstdLevel(c *config.Config) int {
	return int(config.IntSafe(c.Sub(subsection), "zstd_level"))
}

func positiveOr(c *config.Config, name string, def int) int {
	v := config.IntSafe(c.Sub(subsection), name)
	if v > 0 {
		return int(v)
	}

	return def
}
