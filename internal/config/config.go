package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolscope/internal/upstream"
)

// RefreshConfig holds configuration for the refresh pipeline.
type RefreshConfig struct {
	Venue         string
	CoinGeckoURL  string
	DefiLlamaURL  string
	PageSize      int
	BatchSize     int
	RequestDelay  time.Duration
	RateLimitWait time.Duration
	Timeout       time.Duration
	Top           int
	CacheDir      string
	DataDir       string
	UseCache      bool
	ForceRefresh  bool
	PGDSN         string
	LogLevel      string
}

// AnalyzeConfig holds configuration for the distribution reports.
type AnalyzeConfig struct {
	Input      string
	Thresholds []float64
	Targets    []float64
	LogLevel   string
}

// LoadRefresh merges config file, environment variables, and flags into
// RefreshConfig.
func LoadRefresh(cfgFile string, flags *pflag.FlagSet) (RefreshConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return RefreshConfig{}, err
	}

	v.SetDefault("venue", "uniswap_v3")
	v.SetDefault("coingecko-url", upstream.DefaultCoinGeckoURL)
	v.SetDefault("defillama-url", upstream.DefaultDefiLlamaURL)
	v.SetDefault("page-size", 100)
	v.SetDefault("batch-size", 50)
	v.SetDefault("request-delay", 1200*time.Millisecond)
	v.SetDefault("rate-limit-wait", 60*time.Second)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("top", 100)
	v.SetDefault("cache-dir", "./cache")
	v.SetDefault("data-dir", "./data")
	v.SetDefault("use-cache", true)
	v.SetDefault("log-level", "info")

	cfg := RefreshConfig{
		Venue:         v.GetString("venue"),
		CoinGeckoURL:  v.GetString("coingecko-url"),
		DefiLlamaURL:  v.GetString("defillama-url"),
		PageSize:      v.GetInt("page-size"),
		BatchSize:     v.GetInt("batch-size"),
		RequestDelay:  v.GetDuration("request-delay"),
		RateLimitWait: v.GetDuration("rate-limit-wait"),
		Timeout:       v.GetDuration("timeout"),
		Top:           v.GetInt("top"),
		CacheDir:      v.GetString("cache-dir"),
		DataDir:       v.GetString("data-dir"),
		UseCache:      v.GetBool("use-cache"),
		ForceRefresh:  v.GetBool("force-refresh"),
		PGDSN:         v.GetString("pg-dsn"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadAnalyze merges config file, environment variables, and flags into
// AnalyzeConfig.
func LoadAnalyze(cfgFile string, flags *pflag.FlagSet) (AnalyzeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return AnalyzeConfig{}, err
	}

	v.SetDefault("threshold", []string{"1000000", "100000", "50000", "10000"})
	v.SetDefault("target", []string{"90", "95"})
	v.SetDefault("log-level", "info")

	thresholds, err := getFloatSlice(v, "threshold")
	if err != nil {
		return AnalyzeConfig{}, fmt.Errorf("parse thresholds: %w", err)
	}
	targets, err := getFloatSlice(v, "target")
	if err != nil {
		return AnalyzeConfig{}, fmt.Errorf("parse targets: %w", err)
	}

	cfg := AnalyzeConfig{
		Input:      v.GetString("in"),
		Thresholds: thresholds,
		Targets:    targets,
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func getFloatSlice(v *viper.Viper, key string) ([]float64, error) {
	items := getStringSlice(v, key)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", item, err)
		}
		out = append(out, value)
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
