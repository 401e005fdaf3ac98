package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planilhas/types"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	APIBase        string        `mapstructure:"API_BASE"`
	StateDir       string        `mapstructure:"STATE_DIR"`
	DownloadDir    string        `mapstructure:"DOWNLOAD_DIR"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ToastTTL       time.Duration `mapstructure:"TOAST_TTL"`
	OutFormat      string        `mapstructure:"OUT_FORMAT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	ServePort      int           `mapstructure:"SERVE_PORT"`
	SheetCacheSize int           `mapstructure:"SHEET_CACHE_SIZE"`

	RateLimitSubmitsPerMin int `mapstructure:"RATE_LIMIT_SUBMITS_PER_MIN"`
	RateLimitBurstSize     int `mapstructure:"RATE_LIMIT_BURST_SIZE"`
}

const DefaultAPIBase = "http://localhost:8000"

func Load(logger *zap.Logger) *Config {
	var config Config
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")        // For running locally
	v.AddConfigPath("../")      // For running from a subdir
	v.AddConfigPath("./config") // Common config folder
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("API_BASE", DefaultAPIBase)
	v.SetDefault("STATE_DIR", defaultStateDir())
	v.SetDefault("DOWNLOAD_DIR", ".")
	v.SetDefault("REQUEST_TIMEOUT", 120)
	v.SetDefault("TOAST_TTL", 4)
	v.SetDefault("OUT_FORMAT", types.FormatXLSX)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVE_PORT", 8787)
	v.SetDefault("SHEET_CACHE_SIZE", 32)
	v.SetDefault("RATE_LIMIT_SUBMITS_PER_MIN", 20)
	v.SetDefault("RATE_LIMIT_BURST_SIZE", 5)

	if err := v.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Debug("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	// Durations are configured in whole seconds.
	for _, key := range []string{"REQUEST_TIMEOUT", "TOAST_TTL"} {
		v.Set(key, v.GetInt(key))
	}

	if err := v.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.normalize()
	return &config
}

func (c *Config) normalize() {
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	c.OutFormat = NormalizeFormat(c.OutFormat)
	if c.SheetCacheSize <= 0 {
		c.SheetCacheSize = 32
	}
	if c.RateLimitSubmitsPerMin <= 0 {
		c.RateLimitSubmitsPerMin = 20
	}
	if c.RateLimitBurstSize <= 0 {
		c.RateLimitBurstSize = 5
	}

	// Convert seconds to proper time.Duration
	c.RequestTimeout = c.RequestTimeout * time.Second
	c.ToastTTL = c.ToastTTL * time.Second
	if c.ToastTTL <= 0 {
		c.ToastTTL = 4 * time.Second
	}
}

// NormalizeFormat maps an output format name to csv or xlsx. Anything that
// is not csv becomes xlsx.
func NormalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), types.FormatCSV) {
		return types.FormatCSV
	}
	return types.FormatXLSX
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".planilhas"
	}
	return filepath.Join(home, ".planilhas")
}
