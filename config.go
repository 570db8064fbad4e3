package objrepo

import (
	"encoding/json"
	"os"
	"time"
)

// Configuration contains tunables read at startup: backend connection details,
// optional L2 cache options, and the respiration pacing used by bulk operations.
type Configuration struct {
	// Name is the repository name as read from the configuration file. New takes
	// the repository name (the first segment of the $Repository key) as its own
	// argument and does not read this field.
	Name string `json:"name"`
	// URL is the backend connection string, opaque to the core (e.g. a file path,
	// a Redis address, a DSN). Never parsed here.
	URL string `json:"url"`
	// RespirationRate is how many items a bulk operation processes before it
	// cooperatively yields. Defaults to DefaultRespirationRate when zero.
	RespirationRate int `json:"respirationRate"`
	// DefaultMaxTransactionTime is loaded from the configuration file.
	// Repository.Transaction does not read it and puts no time limit on a
	// transaction body; only the caller's ctx bounds it.
	DefaultMaxTransactionTime time.Duration `json:"defaultMaxTransactionTime"`
	// CacheOptions holds settings for the optional Redis-backed L2 cache. New does
	// not read it; the cache is in effect only when the store passed to New is
	// one returned by rediscache.Wrap.
	CacheOptions *CacheOptions `json:"cacheOptions,omitempty"`
	// LogLevel selects the default logger's level: "DEBUG", "INFO", "WARN" or
	// "ERROR". Empty defers to the OBJREPO_LOG_LEVEL environment variable, then
	// to "INFO".
	LogLevel string `json:"logLevel,omitempty"`
	// LogFormat selects the default logger's handler: "text" (the default) or
	// "json".
	LogFormat string `json:"logFormat,omitempty"`
}

// CacheOptions holds connection parameters for the optional Redis L2 cache.
type CacheOptions struct {
	Address  string        `json:"address"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	TTL      time.Duration `json:"ttl"`
}

// LoadConfiguration reads a JSON file into a Configuration.
func LoadConfiguration(filename string) (Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Configuration{}, err
	}
	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return Configuration{}, err
	}
	if c.RespirationRate == 0 {
		c.RespirationRate = DefaultRespirationRate
	}
	return c, nil
}
