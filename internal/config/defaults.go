package config

const (
	defaultConfigPath            = "~/.config/movs/config.toml"
	defaultDataDir               = "~/.local/share/movs"
	defaultLogDir                = "~/.local/share/movs/logs"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBLanguage          = "en-US"
	defaultTMDBRequestTimeout    = 10
	defaultTMDBRequestsPerSecond = 4
	defaultCacheBackend          = CacheBackendJSON
	defaultJSONCacheFile         = "config_cache.json"
	defaultSQLiteCacheFile       = "config_cache.db"
	defaultLoaderRefreshInterval = 3600
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			Language:          defaultTMDBLanguage,
			RequestTimeout:    defaultTMDBRequestTimeout,
			RequestsPerSecond: defaultTMDBRequestsPerSecond,
		},
		Cache: Cache{
			Backend: defaultCacheBackend,
		},
		Loader: Loader{
			RefreshInterval: defaultLoaderRefreshInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
