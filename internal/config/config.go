// README: Config loader with env defaults for HTTP, DB, Redis, pool and matching settings.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MatchingConfig holds the default request parameters of the matching engine.
type MatchingConfig struct {
	NumRecommendations int
	DestThresholdKm    float64
	TimeThresholdHours float64
	TempOverlap        int
	Workers            int
	// ParallelMin is the filtered-set size from which the scan is sharded across Workers.
	ParallelMin    int
	ScanTimeout    time.Duration
	SymmetricGoods bool
}

type PoolConfig struct {
	SeedCSV        string
	RefreshSeconds int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type Config struct {
	Environment string
	HTTP        struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Pool      PoolConfig
	RateLimit RateLimitConfig
	Matching  MatchingConfig
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)
	_ = v.ReadInConfig()

	var cfg Config
	cfg.Environment = v.GetString("CARGO_ENV")
	cfg.HTTP.Addr = v.GetString("CARGO_HTTP_ADDR")
	cfg.DB.DSN = v.GetString("CARGO_DB_DSN")
	cfg.Redis.Addr = v.GetString("CARGO_REDIS_ADDR")
	cfg.Pool = PoolConfig{
		SeedCSV:        v.GetString("CARGO_SEED_CSV"),
		RefreshSeconds: v.GetInt("CARGO_POOL_REFRESH_SECONDS"),
	}
	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("CARGO_RATE_LIMIT_RPS"),
		Burst: v.GetInt("CARGO_RATE_LIMIT_BURST"),
	}
	cfg.Matching = MatchingConfig{
		NumRecommendations: v.GetInt("MATCH_NUM_RECOMMENDATIONS"),
		DestThresholdKm:    v.GetFloat64("MATCH_DEST_THRESHOLD_KM"),
		TimeThresholdHours: v.GetFloat64("MATCH_TIME_THRESHOLD_HOURS"),
		TempOverlap:        v.GetInt("MATCH_TEMP_OVERLAP"),
		Workers:            v.GetInt("MATCH_WORKERS"),
		ParallelMin:        v.GetInt("MATCH_PARALLEL_MIN"),
		ScanTimeout:        v.GetDuration("MATCH_SCAN_TIMEOUT"),
		SymmetricGoods:     v.GetBool("MATCH_SYMMETRIC_GOODS"),
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CARGO_ENV", "development")
	v.SetDefault("CARGO_HTTP_ADDR", ":8080")
	v.SetDefault("CARGO_POOL_REFRESH_SECONDS", 60)
	v.SetDefault("CARGO_RATE_LIMIT_RPS", 50)
	v.SetDefault("CARGO_RATE_LIMIT_BURST", 100)
	v.SetDefault("MATCH_NUM_RECOMMENDATIONS", 5)
	v.SetDefault("MATCH_DEST_THRESHOLD_KM", 50)
	v.SetDefault("MATCH_TIME_THRESHOLD_HOURS", 48)
	v.SetDefault("MATCH_TEMP_OVERLAP", 2)
	v.SetDefault("MATCH_WORKERS", 4)
	v.SetDefault("MATCH_PARALLEL_MIN", 2048)
	v.SetDefault("MATCH_SCAN_TIMEOUT", "5s")
	v.SetDefault("MATCH_SYMMETRIC_GOODS", false)
}

func validate(cfg Config) error {
	m := cfg.Matching
	switch {
	case m.NumRecommendations <= 0:
		return fmt.Errorf("MATCH_NUM_RECOMMENDATIONS must be positive")
	case m.DestThresholdKm <= 0:
		return fmt.Errorf("MATCH_DEST_THRESHOLD_KM must be positive")
	case m.TimeThresholdHours < 0:
		return fmt.Errorf("MATCH_TIME_THRESHOLD_HOURS must not be negative")
	case m.TempOverlap < 0:
		return fmt.Errorf("MATCH_TEMP_OVERLAP must not be negative")
	case m.Workers <= 0:
		return fmt.Errorf("MATCH_WORKERS must be positive")
	case m.ScanTimeout <= 0:
		return fmt.Errorf("MATCH_SCAN_TIMEOUT must be positive")
	}
	if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
		return fmt.Errorf("CARGO_RATE_LIMIT_RPS and CARGO_RATE_LIMIT_BURST must be positive")
	}
	return nil
}
