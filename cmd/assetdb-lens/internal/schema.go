package common

// appConfig lists all keys the application reads from the configuration
// file.
type appConfig struct {
	Logger struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"logger"`

	Storage struct {
		MaxDepth      int `mapstructure:"max_depth"`
		PathCacheSize int `mapstructure:"path_cache_size"`
		VerifyWorkers int `mapstructure:"verify_workers"`
		ZstdLevel     int `mapstructure:"zstd_level"`
	} `mapstructure:"storage"`
}
